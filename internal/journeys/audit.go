package journeys

import (
	"context"

	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// AuditLogger writes a structured log line for every journey lifecycle
// event. It never fails the dispatch.
type AuditLogger struct {
	logg *logger.Logger
}

// NewAuditLogger wires the audit subscriber.
func NewAuditLogger(logg *logger.Logger) *AuditLogger {
	return &AuditLogger{logg: logg}
}

// Register subscribes the audit logger to the journey lifecycle events.
func (a *AuditLogger) Register(bus *events.Bus) {
	for _, name := range []string{
		string(enums.EventJourneyCreated),
		string(enums.EventJourneyUpdated),
		string(enums.EventJourneyDeleted),
	} {
		bus.Subscribe(name, a.Handle)
	}
}

// Handle logs the event with its identifying fields.
func (a *AuditLogger) Handle(ctx context.Context, event events.Event) error {
	if a.logg == nil {
		return nil
	}

	fields := map[string]any{"event": event.Name(), "occurred_on": event.OccurredOn()}
	switch e := event.(type) {
	case JourneyCreated:
		fields["journey_id"] = e.JourneyID.String()
		fields["user_id"] = e.OwnerUserID
		fields["distance_km"] = e.DistanceKm.String()
	case JourneyUpdated:
		fields["journey_id"] = e.JourneyID.String()
		fields["user_id"] = e.OwnerUserID
	case JourneyDeleted:
		fields["journey_id"] = e.JourneyID.String()
		fields["user_id"] = e.OwnerUserID
	}

	a.logg.Info(a.logg.WithFields(ctx, fields), "journey event")
	return nil
}
