package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/waytrackhq/waytrack-backend/api/routes"
	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/internal/favorites"
	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/internal/notify"
	"github.com/waytrackhq/waytrack-backend/internal/realtime"
	"github.com/waytrackhq/waytrack-backend/internal/sharing"
	"github.com/waytrackhq/waytrack-backend/internal/stats"
	"github.com/waytrackhq/waytrack-backend/internal/users"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/db"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/metrics"
	"github.com/waytrackhq/waytrack-backend/pkg/migrate"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/idempotency"
	"github.com/waytrackhq/waytrack-backend/pkg/pubsub"
	"github.com/waytrackhq/waytrack-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

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

	notifyClient, err := notify.NewClient(cfg.Notify)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify client", err)
		os.Exit(1)
	}

	// Domain wiring. The bus delivers after-commit events to the outbox
	// forwarder, the audit logger and the stats projector.
	journeyRepo := journeys.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	bus := events.NewBus()
	forwarder := events.NewForwarder(dbClient, outboxSvc, logg)
	forwarder.Register(bus,
		string(enums.EventJourneyCreated),
		string(enums.EventJourneyUpdated),
		string(enums.EventJourneyDeleted),
	)
	journeys.NewAuditLogger(logg).Register(bus)

	statsRepo := stats.NewRepository(dbClient.DB())
	stats.NewProjector(statsRepo, journeyRepo, logg).Register(bus)

	journeysSvc := journeys.NewService(journeyRepo, dbClient, bus, logg)
	favoritesSvc := favorites.NewService(favorites.NewRepository(dbClient.DB()), journeyRepo)
	statsSvc := stats.NewService(statsRepo)
	usersSvc := users.NewService(users.NewRepository(dbClient.DB()), logg)
	sharingSvc := sharing.NewService(sharing.NewRepository(dbClient.DB()), journeyRepo, usersSvc, logg)

	// Realtime: presence and fan-out groups live in this process, fed by the
	// realtime subscription.
	presence := realtime.NewPresence()
	hub := realtime.NewHub(presence)
	handlers := realtime.NewHandlers(hub, journeyRepo, favoritesSvc, usersSvc, notifyClient, logg)

	idemManager, err := idempotency.NewManager(redisClient, cfg.Eventing.RealtimeIdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}
	consumerMetrics := metrics.NewConsumerMetrics(prometheus.DefaultRegisterer)
	realtimeConsumer, err := realtime.NewConsumer(handlers, pubsubClient.RealtimeSubscription(), idemManager, logg, consumerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := realtimeConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "realtime consumer stopped unexpectedly", err)
			stop()
		}
	}()

	router := routes.NewRouter(routes.Params{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		PubSub:    pubsubClient,
		Directory: usersSvc,
		Journeys:  journeysSvc,
		Favorites: favoritesSvc,
		Sharing:   sharingSvc,
		Stats:     statsSvc,
		Hub:       hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}

	logg.Info(logCtx, "api server shutting down gracefully")
}
