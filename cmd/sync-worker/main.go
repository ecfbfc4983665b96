package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuliahq/sales-sync/internal/sync"
	"github.com/tuliahq/sales-sync/pkg/config"
	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
	"github.com/tuliahq/sales-sync/pkg/firestore"
	"github.com/tuliahq/sales-sync/pkg/logger"
	"github.com/tuliahq/sales-sync/pkg/metrics"
	"github.com/tuliahq/sales-sync/pkg/sevenshifts"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(pkgerrors.ExitCode(err))
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"workspace": cfg.Sync.Workspace,
	})

	ssClient, err := sevenshifts.NewClient(cfg.SevenShifts)
	if err != nil {
		logg.Error(ctx, "failed to build 7shifts client", err)
		os.Exit(pkgerrors.ExitCode(pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "7shifts client")))
	}

	fsClient, err := firestore.NewClient(ctx, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap firestore", err)
		os.Exit(pkgerrors.ExitCode(pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "firestore client")))
	}
	defer func() {
		if err := fsClient.Close(); err != nil {
			logg.Error(ctx, "error closing firestore", err)
		}
	}()

	metricsCollector := metrics.NewSyncRunMetrics(prometheus.DefaultRegisterer)

	service, err := sync.NewService(sync.Params{
		Logger:      logg,
		Getter:      ssClient,
		Store:       fsClient,
		Metrics:     metricsCollector,
		SevenShifts: cfg.SevenShifts,
		Sync:        cfg.Sync,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sync service", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting weekly sales sync")
	if err := service.Run(ctx); err != nil {
		logg.Error(ctx, "sync run failed", err)
		os.Exit(pkgerrors.ExitCode(err))
	}

	logg.Info(ctx, "sync run completed")
}
