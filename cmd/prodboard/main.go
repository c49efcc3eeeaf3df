package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"prodboard/internal/aggregate"
	"prodboard/internal/backend"
	"prodboard/internal/cli"
	apphttp "prodboard/internal/http"
	"prodboard/internal/log"
	"prodboard/internal/normalize"
	"prodboard/internal/report"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	corrections, err := normalize.CorrectionsFromFile(cfg.NormalizeCorrectionsFile)
	if err != nil {
		logger.Error("Failed to load normalization corrections", log.FieldError, err.Error())
		os.Exit(1)
	}
	policy, err := aggregate.ParseDisplayPolicy(cfg.DisplayCapitalize)
	if err != nil {
		logger.Error("Invalid display policy", log.FieldError, err.Error())
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	svc := report.NewService(result.Connector, normalize.New(corrections), aggregate.NewFormatter(policy), report.Options{
		Database:     cfg.DBName,
		DefaultPort:  cfg.DBDefaultPort,
		QueryTimeout: cfg.QueryTimeout,
		MaxLatest:    cfg.LatestActivitiesMax,
		Publisher:    result.Publisher,
		Logger:       logger,
	})

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
		Ready:              result.Ready,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting prodboard server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"corrections", len(corrections),
			"events", result.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
