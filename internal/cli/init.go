// Package cli wires configuration, logging and storage for the fintrack
// commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// SetupLogger builds the process logger at the given level and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the SQLite repository, applying pending migrations.
func OpenStore(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository at %s: %w", dbPath, err)
	}
	logger.Info("Opened SQLite store", "path", dbPath)
	return repo, nil
}

// App is everything a command needs once startup succeeded.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Store    *storage.SQLiteRepository
	Services *services.Services
	Tokens   *auth.Tokens
}

// Bootstrap runs the shared startup sequence. Callers must Close the App.
func Bootstrap(envFile string) (*App, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg.LogLevel)

	repo, err := OpenStore(logger, cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    repo,
		Services: services.New(repo, auth.NewHasher(cfg.BcryptCost), logger),
		Tokens:   auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
