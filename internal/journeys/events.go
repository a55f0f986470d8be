package journeys

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/payloads"
)

// JourneyCreated is staged when a journey is first logged. It carries the
// fields the reward worker needs to recompute the owner's day.
type JourneyCreated struct {
	JourneyID   uuid.UUID
	OwnerUserID string
	StartTime   time.Time
	DistanceKm  decimal.Decimal
	At          time.Time
}

func (e JourneyCreated) Name() string          { return string(enums.EventJourneyCreated) }
func (e JourneyCreated) OccurredOn() time.Time { return e.At }

func (e JourneyCreated) Integration() outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventJourneyCreated,
		AggregateType: enums.AggregateJourney,
		AggregateID:   e.JourneyID,
		Actor:         &outbox.ActorRef{UserID: e.OwnerUserID},
		Data: payloads.JourneyCreatedEvent{
			JourneyID:   e.JourneyID,
			OwnerUserID: e.OwnerUserID,
			StartTime:   e.StartTime,
			DistanceKm:  e.DistanceKm,
		},
		Version:    1,
		OccurredAt: e.At,
	}
}

// JourneyUpdated is staged on edits to an existing journey.
type JourneyUpdated struct {
	JourneyID   uuid.UUID
	OwnerUserID string
	At          time.Time
}

func (e JourneyUpdated) Name() string          { return string(enums.EventJourneyUpdated) }
func (e JourneyUpdated) OccurredOn() time.Time { return e.At }

func (e JourneyUpdated) Integration() outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventJourneyUpdated,
		AggregateType: enums.AggregateJourney,
		AggregateID:   e.JourneyID,
		Actor:         &outbox.ActorRef{UserID: e.OwnerUserID},
		Data: payloads.JourneyUpdatedEvent{
			JourneyID:   e.JourneyID,
			OwnerUserID: e.OwnerUserID,
			OccurredOn:  e.At,
		},
		Version:    1,
		OccurredAt: e.At,
	}
}

// JourneyDeleted is staged when a journey is soft-deleted.
type JourneyDeleted struct {
	JourneyID   uuid.UUID
	OwnerUserID string
	At          time.Time
}

func (e JourneyDeleted) Name() string          { return string(enums.EventJourneyDeleted) }
func (e JourneyDeleted) OccurredOn() time.Time { return e.At }

func (e JourneyDeleted) Integration() outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventJourneyDeleted,
		AggregateType: enums.AggregateJourney,
		AggregateID:   e.JourneyID,
		Actor:         &outbox.ActorRef{UserID: e.OwnerUserID},
		Data: payloads.JourneyDeletedEvent{
			JourneyID:   e.JourneyID,
			OwnerUserID: e.OwnerUserID,
			OccurredOn:  e.At,
		},
		Version:    1,
		OccurredAt: e.At,
	}
}
