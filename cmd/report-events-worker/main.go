package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"prodboard/internal/amqp"
	"prodboard/internal/cli"
	"prodboard/internal/log"
	"prodboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting report-events-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required by the events worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	audit := worker.NewAuditWorker(logger, cfg.SlowReportThreshold)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeReportEvents(gctx, audit.HandleReportEvent)
	})
	g.Go(func() error {
		audit.RunSummaries(gctx, cfg.AuditSummaryInterval)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
