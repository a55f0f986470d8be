package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

type pinger interface {
	Ping(context.Context) error
}

// HealthLive reports process liveness without touching dependencies.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WayTrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency and reports the first failure.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, pubsub pinger) http.HandlerFunc {
	deps := []struct {
		name   string
		pinger pinger
	}{
		{"database", db},
		{"redis", redis},
		{"pubsub", pubsub},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WayTrack-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").
						WithDetails(map[string]any{"dependency": dep.name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
