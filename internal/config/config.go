package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Variant selects the connection defaults of the target database.
type Variant string

const (
	VariantPostgres Variant = "postgres"
	VariantYugabyte Variant = "yugabyte"
)

// DatabaseName is the database every variant connects to.
const DatabaseName = "journal_db"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Log       LogConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// HandlerTimeout is the deadline given to each request. It ends a second
// before WriteTimeout so the handler's response can still be written.
func (c ServerConfig) HandlerTimeout() time.Duration {
	const fallback = 60 * time.Second
	switch {
	case c.WriteTimeout <= 0:
		return fallback
	case c.WriteTimeout > 2*time.Second:
		return c.WriteTimeout - time.Second
	default:
		return c.WriteTimeout / 2
	}
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DatabaseConfig holds connection and pool settings
type DatabaseConfig struct {
	Variant         Variant
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	PoolEnabled     bool
	MinConns        int
	MaxConns        int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration
}

// DSN returns a lib/pq connection URL for the configured database. The
// connect_timeout bounds the TCP dial and startup handshake, which lib/pq runs
// without watching the caller's context.
func (c DatabaseConfig) DSN() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("connect_timeout", strconv.Itoa(c.ConnectTimeoutSeconds()))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ConnectTimeoutSeconds is AcquireTimeout rounded up to whole seconds, at
// least 1. lib/pq only accepts whole seconds and treats 0 as no limit.
func (c DatabaseConfig) ConnectTimeoutSeconds() int {
	secs := int((c.AcquireTimeout + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// MaintenanceDatabase is the database that always exists on the server and is
// used to create DatabaseName.
func (c DatabaseConfig) MaintenanceDatabase() string {
	if c.Variant == VariantYugabyte {
		return "yugabyte"
	}
	return "postgres"
}

// WithName returns a copy of c pointing at another database on the same server.
func (c DatabaseConfig) WithName(name string) DatabaseConfig {
	c.Name = name
	return c
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// Enabled reports whether bearer tokens are required on the API.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

var envBindings = map[string]string{
	"server.host":             "SERVER_HOST",
	"server.port":             "PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":     "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
	"server.trust_proxy":      "SERVER_TRUST_PROXY",

	"database.variant":           "DB_VARIANT",
	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"database.ssl_mode":          "DB_SSL_MODE",
	"database.pool_enabled":      "DB_POOL_ENABLED",
	"database.min_conns":         "DB_MIN_CONNS",
	"database.max_conns":         "DB_MAX_CONNS",
	"database.acquire_timeout":   "DB_ACQUIRE_TIMEOUT",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",

	"redis.addr":     "REDIS_ADDR",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"rate_limit.requests": "RATE_LIMIT_REQUESTS",
	"rate_limit.window":   "RATE_LIMIT_WINDOW",

	"auth.jwt_secret": "JWT_SECRET_KEY",
	"auth.issuer":     "JWT_ISSUER",
	"auth.token_ttl":  "JWT_TOKEN_TTL",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",

	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("database.variant", string(VariantPostgres))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.pool_enabled", true)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.acquire_timeout", 5*time.Second)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("auth.issuer", "journal")
	v.SetDefault("auth.token_ttl", 720*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", "*")
}

// setVariantDefaults fills in the port and credentials that differ between
// plain PostgreSQL and YugabyteDB.
func setVariantDefaults(v *viper.Viper, variant Variant) {
	switch variant {
	case VariantYugabyte:
		v.SetDefault("database.port", 5433)
		v.SetDefault("database.user", "yugabyte")
		v.SetDefault("database.password", "yugabyte")
	default:
		v.SetDefault("database.port", 5432)
		v.SetDefault("database.user", "postgres")
		v.SetDefault("database.password", "postgres")
	}
}
