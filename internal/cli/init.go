// Package cli holds the startup steps shared by cmd/dompet,
// cmd/dompet-worker and cmd/dompetctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dompet/internal/backend"
	"dompet/internal/config"
	"dompet/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at level and makes it the
// slog default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.NewText(os.Stdout, level, component)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and exits
// the process when it is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore creates the configured storage backend.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", backendCfg.Type, err)
	}
	return result, nil
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM and
// then runs cleanup with a context bounded by timeout. done is closed once
// cleanup has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
