package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateJourney OutboxAggregateType = "journey"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateJourney,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres. The same values
// travel as the event_type message attribute on the journey events topic.
type OutboxEventType string

const (
	EventJourneyCreated          OutboxEventType = "journey.created"
	EventJourneyUpdated          OutboxEventType = "journey.updated"
	EventJourneyDeleted          OutboxEventType = "journey.deleted"
	EventJourneyDailyGoalReached OutboxEventType = "journey.dailygoal.achieved"
)

var validOutboxEventTypes = []OutboxEventType{
	EventJourneyCreated,
	EventJourneyUpdated,
	EventJourneyDeleted,
	EventJourneyDailyGoalReached,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
