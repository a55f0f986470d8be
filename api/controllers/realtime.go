package controllers

import (
	"net/http"

	"github.com/coder/websocket"

	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/internal/realtime"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// RealtimeSession upgrades the request to a websocket and runs the
// subscription loop until the client disconnects. Auth runs before the
// upgrade, so an unauthenticated caller never reaches the handshake. The
// session starts subscribed to the user's favorited journeys.
func RealtimeSession(hub *realtime.Hub, favorites realtime.FavoriteLister, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if hub == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime hub unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns(cfg),
		})
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "websocket accept failed", err)
			}
			return
		}

		realtime.RunSession(ctx, hub, ws, userID, favorites, cfg.Realtime, logg)
	}
}

func originPatterns(cfg *config.Config) []string {
	if cfg == nil || len(cfg.CORS.AllowedOrigins) == 0 {
		return nil
	}
	patterns := make([]string, 0, len(cfg.CORS.AllowedOrigins))
	for _, origin := range cfg.CORS.AllowedOrigins {
		patterns = append(patterns, trimScheme(origin))
	}
	return patterns
}

func trimScheme(origin string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(origin) > len(prefix) && origin[:len(prefix)] == prefix {
			return origin[len(prefix):]
		}
	}
	return origin
}
