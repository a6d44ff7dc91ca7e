// Package cli provides common initialization for the feeadmin binary:
// logging, environment loading, configuration, session and client wiring,
// and signal-based cancellation.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"feeadmin/internal/api"
	"feeadmin/internal/config"
	"feeadmin/internal/log"
	"feeadmin/internal/session"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored; the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging at the configured level and
// installs it as the slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.ParseLevel(level), log.ComponentApp)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits the process on
// validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// NewClient wires the session store and the platform client from config.
// A previously saved session is loaded if present.
func NewClient(cfg *config.Config, logger *log.Logger) (*api.Client, *session.Store) {
	store := session.NewStore(cfg.TokenFile)
	if err := store.Load(); err != nil {
		logger.Warn("could not load saved session", log.FieldError, err)
	}
	client := api.New(cfg.APIBaseURL, store, api.Options{
		Timeout:        cfg.APITimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Logger:         logger.WithComponent(log.ComponentAPI),
	})
	return client, store
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM, so an
// interrupted command abandons its in-flight requests.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()
	return ctx
}
