package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/cache"
	"dompet/internal/cli"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/services"
	"dompet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	result, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	st := result.Store

	snapshots := cache.NewLoadingCache(cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL, services.NewSnapshotLoader(st).Load)
	cacheManager := cache.NewManager()
	cacheManager.Register(snapshots)
	cacheManager.StartCleanup(time.Minute)

	invalidator := worker.NewCacheInvalidator(snapshots)
	notifiers := services.MultiNotifier{invalidator}

	// With a broker, changes are also published so other instances and the
	// export worker hear about them; this instance drops its own cache entry
	// directly and again when its consumer sees the echo.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "")
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		notifiers = append(notifiers, services.NotifierFunc(amqpClient.PublishChange))
		logger.Info("Publishing changes", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - changes stay local to this instance")
	}

	ledger := services.NewLedger(st, services.WithNotifier(notifiers))
	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), ledger, snapshots, apphttp.Options{
		PageSize:           cfg.PageSize,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Storage close error", log.FieldError, err)
			}
		}
	})

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeChanges(shutdownCtx, invalidator.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumer stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting dompet server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
