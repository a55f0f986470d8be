package controllers

import (
	"net/http"

	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/internal/favorites"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// FavoriteToggle flips the caller's favorite mark on a journey and returns
// the resulting state.
func FavoriteToggle(svc *favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		journeyID, err := journeyIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		favorited, err := svc.Toggle(ctx, userID, journeyID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"favorited": favorited})
	}
}

// FavoriteList returns the journey ids the caller has favorited.
func FavoriteList(svc *favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		journeyIDs, err := svc.JourneysOf(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"journeyIds": journeyIDs})
	}
}
