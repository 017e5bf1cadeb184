package main

import (
	"context"
	"os"
	"time"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/backend"
	"syndicpulse/internal/cli"
	applog "syndicpulse/internal/log"
	"syndicpulse/internal/services"
	gsheet "syndicpulse/internal/sheets/google"
	"syndicpulse/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Starting syndicpulse-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	publisher, err := gsheet.NewPublisher(context.Background(), cfg.GoogleSpreadsheetID, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets publisher", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets publisher initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// No cache: every message must see what the server just wrote.
	reports := services.NewReportService(services.ReportDeps{
		Source:    result.Store,
		Reference: backendCfg.ReferenceMonth,
		AppName:   cfg.AppName,
		Currency:  cfg.Currency,
		Logger:    logger,
	})
	syncWorker := worker.NewSyncWorker(reports, publisher, cfg.SheetsSyncInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := syncWorker.Run(ctx, amqpClient); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("Worker stopped gracefully")
}
