package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minSecretLength = 16
	devSecret       = "fintrack-dev-secret-change-me"
)

type Config struct {
	// HTTP Server
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Middleware
	RateLimitPerMinute int

	// Logging
	LogLevel string

	AppEnv string
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 12),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		AppEnv:   getEnv("APP_ENV", EnvDevelopment),
	}

	// Development runs without setup; production must bring its own secret.
	if cfg.JWTSecret == "" && cfg.AppEnv == EnvDevelopment {
		cfg.JWTSecret = devSecret
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate environment
	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		errors = append(errors, fmt.Sprintf("invalid app env '%s': must be one of [%s %s]", c.AppEnv, EnvDevelopment, EnvProduction))
	}

	// Validate SQLite configuration
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate auth configuration
	if c.JWTSecret == "" {
		errors = append(errors, "JWT secret is required")
	} else if len(c.JWTSecret) < minSecretLength {
		errors = append(errors, fmt.Sprintf("JWT secret too short: must be at least %d characters", minSecretLength))
	} else if c.AppEnv == EnvProduction && c.JWTSecret == devSecret {
		errors = append(errors, "JWT secret must be changed in production")
	}

	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	} else if c.TokenTTL > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at most 30 days", c.TokenTTL))
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.BcryptCost))
	}

	// Validate middleware configuration
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	} else if c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at most 10000", c.RateLimitPerMinute))
	}

	// Validate log level
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// Validate server timeouts
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		errors = append(errors, "HTTP timeouts must be positive")
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
