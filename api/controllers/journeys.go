package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/api/validators"
	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

const maxLocationLength = 255

type journeyPayload struct {
	StartLocation   string    `json:"startLocation" validate:"required,max=255"`
	StartTime       time.Time `json:"startTime" validate:"required"`
	ArrivalLocation string    `json:"arrivalLocation" validate:"required,max=255"`
	ArrivalTime     time.Time `json:"arrivalTime" validate:"required"`
	TransportType   string    `json:"transportType" validate:"required"`
	DistanceKm      string    `json:"distanceKm" validate:"required"`
}

func (p journeyPayload) toInput() (journeys.JourneyInput, error) {
	transport, err := enums.ParseTransportType(p.TransportType)
	if err != nil {
		return journeys.JourneyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transport type").
			WithDetails(map[string]any{"transportType": p.TransportType})
	}
	distance, err := decimal.NewFromString(p.DistanceKm)
	if err != nil {
		return journeys.JourneyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "distance must be a decimal number")
	}
	return journeys.JourneyInput{
		StartLocation:   validators.SanitizeString(p.StartLocation, maxLocationLength),
		StartTime:       p.StartTime,
		ArrivalLocation: validators.SanitizeString(p.ArrivalLocation, maxLocationLength),
		ArrivalTime:     p.ArrivalTime,
		TransportType:   transport,
		DistanceKm:      distance,
	}, nil
}

// JourneyCreate logs a new journey for the authenticated user.
func JourneyCreate(svc *journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journey service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload journeyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// JourneyUpdate replaces the editable fields of an owned journey.
func JourneyUpdate(svc *journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journey service unavailable"))
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

		var payload journeyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Update(ctx, userID, journeyID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// JourneyDelete soft-deletes an owned journey.
func JourneyDelete(svc *journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journey service unavailable"))
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

		if err := svc.Delete(ctx, userID, journeyID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// JourneyDetail returns a single live journey.
func JourneyDetail(svc *journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journey service unavailable"))
			return
		}

		journeyID, err := journeyIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, journeyID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// JourneyList returns the authenticated user's journeys, newest start first.
func JourneyList(svc *journeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journey service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 20, 1, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, userID, journeys.ListParams{Page: page, PageSize: pageSize})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func journeyIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "journeyId")
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "journey id is required")
	}
	journeyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid journey id")
	}
	return journeyID, nil
}
