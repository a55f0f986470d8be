package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/api/validators"
	"github.com/waytrackhq/waytrack-backend/internal/sharing"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

type sharePayload struct {
	Emails []string `json:"emails" validate:"required,min=1,max=50,dive,email"`
}

// JourneyShare grants the listed users access to the caller's journey and
// reports how many new grants were written.
func JourneyShare(svc *sharing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sharing service unavailable"))
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

		var payload sharePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ShareByEmail(ctx, userID, journeyID, payload.Emails)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// JourneyUnshare revokes the listed users' access to the caller's journey.
func JourneyUnshare(svc *sharing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sharing service unavailable"))
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

		var payload sharePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.UnshareByEmail(ctx, userID, journeyID, payload.Emails)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PublicLinkCreate hands back the journey's public link token, minting one
// when none is active.
func PublicLinkCreate(svc *sharing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sharing service unavailable"))
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

		link, err := svc.CreatePublicLink(ctx, userID, journeyID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, link)
	}
}

// PublicLinkRevoke invalidates the journey's public link.
func PublicLinkRevoke(svc *sharing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sharing service unavailable"))
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

		if err := svc.RevokePublicLink(ctx, userID, journeyID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"revoked": true})
	}
}

// PublicJourneyDetail serves a journey through its public link token. This is
// the only journey read that skips authentication.
func PublicJourneyDetail(svc *sharing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sharing service unavailable"))
			return
		}

		token := chi.URLParam(r, "token")
		dto, err := svc.PublicJourney(ctx, token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
