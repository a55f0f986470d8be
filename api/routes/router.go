package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waytrackhq/waytrack-backend/api/controllers"
	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/internal/favorites"
	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/internal/realtime"
	"github.com/waytrackhq/waytrack-backend/internal/sharing"
	"github.com/waytrackhq/waytrack-backend/internal/stats"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Params carries everything the router wires into handlers.
type Params struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        pinger
	Redis     *redis.Client
	PubSub    pinger
	Directory middleware.IdentitySyncer
	Journeys  *journeys.Service
	Favorites *favorites.Service
	Sharing   *sharing.Service
	Stats     *stats.Service
	Hub       *realtime.Hub
}

// NewRouter assembles the HTTP surface: health and metrics stay public,
// everything under /api/v1 requires a bearer token.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis, p.PubSub))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public-link reads carry their own capability token instead of a bearer
	// token.
	r.Get("/public/journeys/{token}", controllers.PublicJourneyDetail(p.Sharing, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Directory, logg))
		if p.Redis != nil {
			r.Use(middleware.RateLimit(p.Redis, cfg.RateLimit.Requests, cfg.RateLimit.Window, logg))
		}

		r.Route("/journeys", func(r chi.Router) {
			r.Post("/", controllers.JourneyCreate(p.Journeys, logg))
			r.Get("/", controllers.JourneyList(p.Journeys, logg))
			r.Get("/{journeyId}", controllers.JourneyDetail(p.Journeys, logg))
			r.Put("/{journeyId}", controllers.JourneyUpdate(p.Journeys, logg))
			r.Delete("/{journeyId}", controllers.JourneyDelete(p.Journeys, logg))
			r.Post("/{journeyId}/favorite", controllers.FavoriteToggle(p.Favorites, logg))
			r.Post("/{journeyId}/share", controllers.JourneyShare(p.Sharing, logg))
			r.Delete("/{journeyId}/share", controllers.JourneyUnshare(p.Sharing, logg))
			r.Post("/{journeyId}/public-link", controllers.PublicLinkCreate(p.Sharing, logg))
			r.Delete("/{journeyId}/public-link", controllers.PublicLinkRevoke(p.Sharing, logg))
		})

		r.Get("/favorites", controllers.FavoriteList(p.Favorites, logg))
		r.Get("/stats/monthly", controllers.MonthlyStats(p.Stats, logg))
		r.Get("/ws", controllers.RealtimeSession(p.Hub, p.Favorites, cfg, logg))
	})

	return r
}
