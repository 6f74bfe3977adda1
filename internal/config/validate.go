package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength applies only when a secret is configured at all.
const minJWTSecretLength = 32

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth: jwt_secret must be at least %d characters (got %d)", minJWTSecretLength, len(c.Auth.JWTSecret))
	}

	if c.Redis.Enabled() {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate_limit: requests must be > 0 (got %d)", c.RateLimit.Requests)
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate_limit: window must be > 0 (got %s)", c.RateLimit.Window)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log: format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	switch d.Variant {
	case VariantPostgres, VariantYugabyte:
	default:
		return fmt.Errorf("variant must be %q or %q (got %q)", VariantPostgres, VariantYugabyte, d.Variant)
	}
	if d.Port < 1 || d.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", d.Port)
	}
	if d.MaxConns < 1 {
		return fmt.Errorf("max_conns must be >= 1 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns must be in 0..max_conns (got %d, max %d)", d.MinConns, d.MaxConns)
	}
	if d.AcquireTimeout <= 0 {
		return fmt.Errorf("acquire_timeout must be > 0 (got %s)", d.AcquireTimeout)
	}
	return nil
}
