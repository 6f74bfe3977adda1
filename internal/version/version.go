package version

// Version is overridden at build time with
// -ldflags "-X github.com/dayjournal/backend/internal/version.Version=1.2.3".
var Version = "1.0.0"
