// Command dompetctl works with a dompet ledger directly against its storage
// backend, without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	"dompet/internal/config"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/services"
)

// publisher announces changes made here so running servers drop their
// cached snapshots. The ledger closes it.
type publisher struct {
	*amqp.Client
}

func (p publisher) Notify(ctx context.Context, ev core.ChangeEvent) error {
	return p.PublishChange(ctx, ev)
}

func main() {
	cli.LoadEnvFile()

	open := func(ctx context.Context) (*services.Ledger, error) {
		logger := log.NewText(os.Stderr, envOr("LOG_LEVEL", "warn"), "dompetctl")
		log.SetDefault(logger)

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		result, err := cli.OpenStore(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug("Opened store", "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)

		var opts []services.Option
		if cfg.AMQPURL != "" {
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "")
			if err != nil {
				logger.Warn("Changes will not be published", log.FieldError, err)
			} else {
				opts = append(opts, services.WithNotifier(publisher{client}))
			}
		}
		return services.NewLedger(result.Store, opts...), nil
	}

	if err := execute(context.Background(), open, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
