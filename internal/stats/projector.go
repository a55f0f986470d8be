package stats

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

type journeyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Journey, error)
}

// Projector maintains the monthly_distances read model. It subscribes to the
// in-process journey events and recomputes the affected owner-month from the
// journeys table, so a replayed or duplicated event converges to the same
// total. An edit that moves a journey into another month refreshes the new
// month on its event and the old month on the next event touching it.
type Projector struct {
	repo     *Repository
	journeys journeyFinder
	logg     *logger.Logger
}

// NewProjector wires the monthly distance projector.
func NewProjector(repo *Repository, finder journeyFinder, logg *logger.Logger) *Projector {
	return &Projector{repo: repo, journeys: finder, logg: logg}
}

// Register subscribes the projector to the journey lifecycle events.
func (p *Projector) Register(bus *events.Bus) {
	for _, name := range []string{
		string(enums.EventJourneyCreated),
		string(enums.EventJourneyUpdated),
		string(enums.EventJourneyDeleted),
	} {
		bus.Subscribe(name, p.Handle)
	}
}

// Handle recomputes the owner-month touched by the event.
func (p *Projector) Handle(ctx context.Context, event events.Event) error {
	var journeyID uuid.UUID
	switch e := event.(type) {
	case journeys.JourneyCreated:
		journeyID = e.JourneyID
	case journeys.JourneyUpdated:
		journeyID = e.JourneyID
	case journeys.JourneyDeleted:
		journeyID = e.JourneyID
	default:
		return nil
	}

	journey, err := p.journeys.FindByID(ctx, journeyID)
	if err != nil {
		return err
	}
	if journey == nil {
		return nil
	}

	month := MonthKeyUTC(journey.StartTime)
	monthStart, monthEnd := MonthWindowUTC(journey.StartTime)

	total, err := p.repo.SumMonth(ctx, journey.OwnerUserID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if err := p.repo.Upsert(ctx, journey.OwnerUserID, month, total); err != nil {
		return err
	}

	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"user_id":  journey.OwnerUserID,
			"month":    month,
			"total_km": total.String(),
		})
		p.logg.Debug(logCtx, "monthly distance projected")
	}
	return nil
}

// MonthKeyUTC formats t's UTC month as the read-model key.
func MonthKeyUTC(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthWindowUTC returns the half-open UTC month interval containing t.
func MonthWindowUTC(t time.Time) (time.Time, time.Time) {
	utc := t.UTC()
	start := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
