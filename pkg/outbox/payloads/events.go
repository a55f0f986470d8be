package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JourneyCreatedEvent is published for every newly logged journey. The reward
// worker recomputes the owner's day from it.
type JourneyCreatedEvent struct {
	JourneyID   uuid.UUID       `json:"journeyId"`
	OwnerUserID string          `json:"ownerUserId"`
	StartTime   time.Time       `json:"startTime"`
	DistanceKm  decimal.Decimal `json:"distanceKm"`
}

// JourneyUpdatedEvent signals an edit to an existing journey.
type JourneyUpdatedEvent struct {
	JourneyID   uuid.UUID `json:"journeyId"`
	OwnerUserID string    `json:"ownerUserId"`
	OccurredOn  time.Time `json:"occurredOn"`
}

// JourneyDeletedEvent signals a journey was removed.
type JourneyDeletedEvent struct {
	JourneyID   uuid.UUID `json:"journeyId"`
	OwnerUserID string    `json:"ownerUserId"`
	OccurredOn  time.Time `json:"occurredOn"`
}

// DailyGoalAchievedEvent is emitted by the reward worker exactly once per
// owner per UTC day, after the ledger row is durably inserted.
type DailyGoalAchievedEvent struct {
	JourneyID   uuid.UUID       `json:"journeyId"`
	OwnerUserID string          `json:"ownerUserId"`
	DayUTC      string          `json:"dayUtc"`
	TotalKm     decimal.Decimal `json:"totalKm"`
	AchievedAt  time.Time       `json:"achievedAt"`
}
