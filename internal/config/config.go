// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "schoolhub-dev-secret-change-me"

// DefaultAdminPassword is only acceptable outside production.
const DefaultAdminPassword = "change-me-now"

// Config holds all server settings. Every field maps to a SCHOOLHUB_* variable.
type Config struct {
	Env      string `env:"SCHOOLHUB_ENV" env-default:"development"`
	Addr     string `env:"SCHOOLHUB_ADDR" env-default:":8080"`
	LogLevel string `env:"SCHOOLHUB_LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig
	Auth     AuthConfig
	Email    EmailConfig
	HTTP     HTTPConfig

	SeedActivities bool `env:"SCHOOLHUB_SEED_ACTIVITIES" env-default:"true"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path         string        `env:"SCHOOLHUB_DB_PATH" env-default:"schoolhub.db"`
	MaxOpenConns int           `env:"SCHOOLHUB_DB_MAX_OPEN_CONNS" env-default:"25"`
	SlowQuery    time.Duration `env:"SCHOOLHUB_SLOW_QUERY" env-default:"50ms"`
}

// AuthConfig holds token and seeded-admin settings.
type AuthConfig struct {
	JWTSecret     string        `env:"SCHOOLHUB_JWT_SECRET" env-default:"schoolhub-dev-secret-change-me"`
	TokenTTL      time.Duration `env:"SCHOOLHUB_TOKEN_TTL" env-default:"24h"`
	AdminEmail    string        `env:"SCHOOLHUB_ADMIN_EMAIL" env-default:"admin@mergington.edu"`
	AdminPassword string        `env:"SCHOOLHUB_ADMIN_PASSWORD" env-default:"change-me-now"`
}

// EmailConfig selects the outbound mail sender. An empty ResendKey means noop.
type EmailConfig struct {
	ResendKey string `env:"SCHOOLHUB_RESEND_KEY"`
	From      string `env:"SCHOOLHUB_EMAIL_FROM" env-default:"Mergington High <noreply@mergington.edu>"`
}

// HTTPConfig holds edge settings.
type HTTPConfig struct {
	CORSOrigins  []string      `env:"SCHOOLHUB_CORS_ORIGINS" env-separator:"," env-default:"*"`
	CSRFKey      string        `env:"SCHOOLHUB_CSRF_KEY"`
	RateLimit    int           `env:"SCHOOLHUB_RATE_LIMIT" env-default:"120"`
	RateInterval time.Duration `env:"SCHOOLHUB_RATE_INTERVAL" env-default:"1m"`
	RedisURL     string        `env:"SCHOOLHUB_REDIS_URL"`
}

// IsProduction reports whether the server runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads an optional dotenv file and then the process environment.
// Variables already set in the environment win over the dotenv file.
// PRE: envFile may be empty or missing
// POST: returns a validated Config
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Auth.TokenTTL <= 0 {
		return errors.New("SCHOOLHUB_TOKEN_TTL must be positive")
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateInterval <= 0 {
		return errors.New("SCHOOLHUB_RATE_LIMIT and SCHOOLHUB_RATE_INTERVAL must be positive")
	}
	if c.HTTP.CSRFKey != "" && len(c.HTTP.CSRFKey) != 32 {
		return errors.New("SCHOOLHUB_CSRF_KEY must be exactly 32 bytes")
	}
	if !c.IsProduction() {
		return nil
	}
	if c.Auth.JWTSecret == DefaultJWTSecret || len(c.Auth.JWTSecret) < 32 {
		return errors.New("SCHOOLHUB_JWT_SECRET must be set to at least 32 characters in production")
	}
	if c.Auth.AdminPassword == DefaultAdminPassword {
		return errors.New("SCHOOLHUB_ADMIN_PASSWORD must be changed in production")
	}
	return nil
}
