package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/backend"
	"syndicpulse/internal/cache"
	"syndicpulse/internal/cli"
	apphttp "syndicpulse/internal/http"
	applog "syndicpulse/internal/log"
	"syndicpulse/internal/metrics"
	"syndicpulse/internal/report"
	"syndicpulse/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	m := metrics.New()

	reportCache := cache.NewLRUCache[report.Report](64, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(time.Minute)

	reports := services.NewReportService(services.ReportDeps{
		Source:    result.Store,
		Reference: backendCfg.ReferenceMonth,
		AppName:   cfg.AppName,
		Currency:  cfg.Currency,
		Cache:     reportCache,
		Metrics:   m,
		Logger:    logger,
	})

	ledgerDeps := services.LedgerDeps{
		Store:     result.Store,
		Reference: backendCfg.ReferenceMonth,
		Reports:   reports,
		Metrics:   m,
		Logger:    logger,
	}
	var checks []apphttp.ReadinessCheck
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The ledger still works without events; the worker's periodic
			// sync catches up.
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			ledgerDeps.Publisher = amqpClient
			checks = append(checks, apphttp.ReadinessCheck{Name: "amqp", Check: amqpClient.Healthy})
			logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}
	ledgerSvc := services.NewLedgerService(ledgerDeps)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Buildings:          result.Store,
		Ledger:             ledgerSvc,
		Reports:            reports,
		Metrics:            m,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             checks,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close failed", "error", err)
			}
		}
	})

	logger.Info("Starting syndicpulse server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		applog.FieldReferenceMonth, backendCfg.ReferenceMonth.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
