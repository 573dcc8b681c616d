package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal and report worker
type Config struct {
	// Remote SkillBridge backend
	API APIConfig `envPrefix:"SKILLBRIDGE_"`

	Portal PortalConfig `envPrefix:"PORTAL_"`

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	Reports ReportsConfig `envPrefix:"REPORTS_"`

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig points at the remote REST backend
type APIConfig struct {
	URL     string        `env:"API_URL" envDefault:"http://localhost:8080/api/v1"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

// PortalConfig holds web portal settings
type PortalConfig struct {
	Addr           string        `env:"ADDR" envDefault:":8090"`
	Secret         string        `env:"SECRET"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"db"` // db, redis
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:"skillbridge.sqlite"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"` // Redis address (host:port)
}

// ReportsConfig configures the report snapshot worker
type ReportsConfig struct {
	Schedule string `env:"SCHEDULE" envDefault:"0 2 * * *"` // 5-field cron, empty disables scheduling
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	TopLimit int    `env:"TOP_LIMIT" envDefault:"5"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return Parse(env.Options{})
}

// Parse reads the configuration using the given env options. Tests pass an
// Environment map instead of touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.API.URL = strings.TrimRight(strings.TrimSpace(cfg.API.URL), "/")

	switch cfg.Portal.SessionBackend {
	case "db", "redis":
	default:
		return nil, fmt.Errorf("invalid PORTAL_SESSION_BACKEND %q, must be db or redis", cfg.Portal.SessionBackend)
	}

	return cfg, nil
}

// ValidatePortal checks the settings only the portal needs
func (c *Config) ValidatePortal() error {
	if len(c.Portal.Secret) < 32 {
		return fmt.Errorf("PORTAL_SECRET must be set to at least 32 characters")
	}
	return nil
}

// ValidateReports checks the settings only the report worker needs
func (c *Config) ValidateReports() error {
	if c.Reports.Email == "" || c.Reports.Password == "" {
		return fmt.Errorf("REPORTS_EMAIL and REPORTS_PASSWORD are required")
	}
	return nil
}
