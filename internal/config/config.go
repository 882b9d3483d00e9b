// Package config loads service settings from environment variables,
// applies defaults and validates everything once at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	History  HistoryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"5000"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// in-flight distribution runs.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by middleware to every request.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	// URL is required; DB_URL is accepted as an alias.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the embedded schema on startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// UploadConfig holds contact sheet upload settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 10MB).
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent caps distribution runs in flight (default: 5).
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a run waits for a free slot (default: 30s).
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single distribution run (default: 55s). It must not
	// exceed SERVER_REQUEST_TIMEOUT, which already caps the request.
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"55s"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit applies to the upload endpoint only (default: 10/min).
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds authentication and hardening settings.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on /api routes.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of principal:key pairs. The
	// principal is recorded as the uploader of each distribution.
	APIKeys []string `env:"API_KEYS"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// BcryptCost is the work factor for agent passwords (default: 12).
	BcryptCost int `env:"BCRYPT_COST" default:"12"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// HistoryConfig controls paging of the distribution history.
type HistoryConfig struct {
	DefaultPageSize int `env:"HISTORY_PAGE_SIZE" default:"10"`
	MaxPageSize     int `env:"HISTORY_MAX_PAGE_SIZE" default:"100"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
