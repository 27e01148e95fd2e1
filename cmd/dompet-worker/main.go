package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	"dompet/internal/export/sheets"
	"dompet/internal/log"
	"dompet/internal/worker"
)

const defaultQueue = "dompet.export"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting dompet-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend shares nothing with the API process; sheets will only show seed data")
	}

	ctx := context.Background()
	result, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sheetsClient, err := sheets.New(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	queue := cfg.AMQPQueue
	if queue == "" {
		queue = defaultQueue
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, queue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewSheetMirror(result.Store, sheetsClient, worker.MirrorConfig{
		FlushInterval: cfg.ExportInterval,
		SheetPrefix:   cfg.GoogleSheetName,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := mirror.Stop(ctx); err != nil {
			logger.Warn("Sheet mirror stop error", log.FieldError, err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Storage close error", log.FieldError, err)
			}
		}
	})

	if err := mirror.Start(ctx); err != nil {
		logger.Error("Failed to start sheet mirror", log.FieldError, err)
		os.Exit(1)
	}

	go func() {
		err := amqpClient.ConsumeChanges(ctx, mirror.HandleChange)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
