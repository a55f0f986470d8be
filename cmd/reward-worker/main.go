package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/internal/rewards"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/db"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/metrics"
	"github.com/waytrackhq/waytrack-backend/pkg/migrate"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
	"github.com/waytrackhq/waytrack-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reward-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "reward-worker"

	logg = logger.New(logger.Options{
		ServiceName: "reward-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	threshold, err := decimal.NewFromString(cfg.Goal.DailyThresholdKm)
	if err != nil {
		logg.Error(context.Background(), "invalid daily goal threshold", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	rewardSvc := rewards.NewService(
		dbClient,
		rewards.NewRepository(dbClient.DB()),
		journeys.NewRepository(dbClient.DB()),
		rewards.NewCalculator(threshold),
		outboxSvc,
		logg,
	)

	consumerMetrics := metrics.NewConsumerMetrics(prometheus.DefaultRegisterer)
	consumer, err := rewards.NewConsumer(rewardSvc, pubsubClient.RewardSubscription(), logg, consumerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create reward consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reward worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "reward-worker",
	})
	logg.Info(ctx, "starting reward worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reward worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reward worker shutting down gracefully")
}
