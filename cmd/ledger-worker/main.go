package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	applog "ledger/internal/log"
	"ledger/internal/worker"
)

const statsInterval = 15 * time.Minute

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	// The worker only reads from the API, so it gets backends without
	// event publishing.
	apiOnly := *cfg
	apiOnly.AMQPURL = ""
	result := cli.InitBackends(context.Background(), logger.Logger, &apiOnly)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	auditWorker := worker.NewAuditWorker(result.Backends)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(context.Context) {
		logger.Info("Shutting down worker...")
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	})

	go auditWorker.ReportStats(ctx, statsInterval)

	go func() {
		err := amqpClient.ConsumeEntityEvents(ctx, auditWorker.HandleEntityEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
