package journeys

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

var maxDistanceKm = decimal.RequireFromString("999.99")

// Aggregate wraps a journey row and stages domain events during mutation.
// Events accumulate until a commit session collects them after the
// surrounding transaction commits.
type Aggregate struct {
	journey models.Journey
	pending []events.Event
}

// NewAggregate validates the input and stages a JourneyCreated event.
func NewAggregate(ownerUserID string, input JourneyInput, now time.Time) (*Aggregate, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	agg := &Aggregate{
		journey: models.Journey{
			ID:              uuid.New(),
			OwnerUserID:     ownerUserID,
			StartLocation:   input.StartLocation,
			StartTime:       input.StartTime,
			ArrivalLocation: input.ArrivalLocation,
			ArrivalTime:     input.ArrivalTime,
			TransportType:   input.TransportType,
			DistanceKm:      input.DistanceKm,
		},
	}
	agg.stageCreated(now)
	return agg, nil
}

// Load rehydrates an aggregate from a persisted row. No events are staged.
func Load(row models.Journey) *Aggregate {
	return &Aggregate{journey: row}
}

// Journey returns a copy of the underlying row for persistence.
func (a *Aggregate) Journey() models.Journey {
	return a.journey
}

// Update replaces the editable fields and stages a JourneyUpdated event.
// Deleted journeys cannot be edited.
func (a *Aggregate) Update(input JourneyInput, now time.Time) error {
	if a.journey.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "journey is deleted")
	}
	if err := validateInput(input); err != nil {
		return err
	}

	a.journey.StartLocation = input.StartLocation
	a.journey.StartTime = input.StartTime
	a.journey.ArrivalLocation = input.ArrivalLocation
	a.journey.ArrivalTime = input.ArrivalTime
	a.journey.TransportType = input.TransportType
	a.journey.DistanceKm = input.DistanceKm

	a.pending = append(a.pending, JourneyUpdated{
		JourneyID:   a.journey.ID,
		OwnerUserID: a.journey.OwnerUserID,
		At:          now,
	})
	return nil
}

// Delete soft-deletes the journey and stages a JourneyDeleted event.
// Deleting twice is a state conflict. The goal flag survives deletion.
func (a *Aggregate) Delete(now time.Time) error {
	if a.journey.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "journey is already deleted")
	}
	a.journey.IsDeleted = true
	a.pending = append(a.pending, JourneyDeleted{
		JourneyID:   a.journey.ID,
		OwnerUserID: a.journey.OwnerUserID,
		At:          now,
	})
	return nil
}

// MarkGoalAchieved sets the monotonic goal flag. Returns true when the flag
// flipped, false when it was already set.
func (a *Aggregate) MarkGoalAchieved() bool {
	if a.journey.IsGoalAchieved {
		return false
	}
	a.journey.IsGoalAchieved = true
	return true
}

// IsOwnedBy reports whether the subject owns this journey.
func (a *Aggregate) IsOwnedBy(userID string) bool {
	return a.journey.OwnerUserID == userID
}

// PendingEvents implements events.Recorder.
func (a *Aggregate) PendingEvents() []events.Event {
	return append([]events.Event(nil), a.pending...)
}

// ClearEvents implements events.Recorder.
func (a *Aggregate) ClearEvents() {
	a.pending = nil
}

func (a *Aggregate) stageCreated(now time.Time) {
	a.pending = append(a.pending, JourneyCreated{
		JourneyID:   a.journey.ID,
		OwnerUserID: a.journey.OwnerUserID,
		StartTime:   a.journey.StartTime,
		DistanceKm:  a.journey.DistanceKm,
		At:          now,
	})
}

func validateInput(input JourneyInput) error {
	if strings.TrimSpace(input.StartLocation) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "start location is required")
	}
	if strings.TrimSpace(input.ArrivalLocation) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "arrival location is required")
	}
	if input.StartTime.IsZero() || input.ArrivalTime.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and arrival times are required")
	}
	if input.ArrivalTime.Before(input.StartTime) {
		return pkgerrors.New(pkgerrors.CodeValidation, "arrival time must not precede start time")
	}
	if !input.TransportType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown transport type")
	}
	if input.DistanceKm.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "distance must not be negative")
	}
	if input.DistanceKm.GreaterThan(maxDistanceKm) {
		return pkgerrors.New(pkgerrors.CodeValidation, "distance exceeds 999.99 km")
	}
	if input.DistanceKm.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "distance carries at most two decimal places")
	}
	return nil
}
