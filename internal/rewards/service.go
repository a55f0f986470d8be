package rewards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/pkg/db"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Award describes a freshly granted daily goal.
type Award struct {
	JourneyID   uuid.UUID
	OwnerUserID string
	DayUTC      string
	TotalKm     decimal.Decimal
	AchievedAt  time.Time
}

// Service runs goal detection: it recomputes an owner's day, inserts the
// ledger row, marks the triggering journey and emits the achievement event,
// all in one transaction. The ledger primary key makes the whole operation
// idempotent under redelivery and concurrent workers.
type Service struct {
	tx       txRunner
	ledger   *Repository
	journeys journeys.Repository
	calc     *Calculator
	outbox   outboxPublisher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the goal detection service.
func NewService(tx txRunner, ledger *Repository, journeyRepo journeys.Repository, calc *Calculator, outboxSvc outboxPublisher, logg *logger.Logger) *Service {
	return &Service{
		tx:       tx,
		ledger:   ledger,
		journeys: journeyRepo,
		calc:     calc,
		outbox:   outboxSvc,
		logg:     logg,
		now:      time.Now,
	}
}

// CheckAndAward re-fetches the triggering journey and recomputes its owner's
// UTC day. The owner and the day both come from the persisted row, never from
// the message: a journey edited to another day is evaluated where it now
// lives, and a journey deleted since publish is dropped outright. A nil Award
// with a nil error means nothing to do: the journey is gone, the day falls
// short of the goal, or it was already awarded (including losing an insert
// race to another worker).
func (s *Service) CheckAndAward(ctx context.Context, journeyID uuid.UUID) (*Award, error) {
	journey, err := s.journeys.FindByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey == nil || journey.IsDeleted {
		if s.logg != nil {
			s.logg.Debug(s.logg.WithJourneyID(ctx, journeyID.String()), "triggering journey is gone, dropping")
		}
		return nil, nil
	}

	ownerUserID := journey.OwnerUserID
	dayKey := DayKeyUTC(journey.StartTime)
	dayStart, dayEnd := DayWindowUTC(journey.StartTime)

	// Cheap pre-check outside the transaction. The insert below remains the
	// source of truth.
	existing, err := s.ledger.Find(ctx, ownerUserID, dayKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	var award *Award
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		journeyRepo := s.journeys.WithTx(tx)

		rows, err := journeyRepo.ListByOwnerDay(ctx, ownerUserID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		trigger := s.calc.Evaluate(rows)
		if trigger == nil {
			return nil
		}

		achievedAt := s.now().UTC()
		row := models.DailyGoal{
			OwnerUserID:       ownerUserID,
			DayUTC:            dayKey,
			AchievedJourneyID: trigger.Journey.ID,
			TotalKm:           trigger.TotalKm,
			AchievedAtUTC:     achievedAt,
		}
		if err := s.ledger.WithTx(tx).Insert(ctx, &row); err != nil {
			return err
		}

		if _, err := journeyRepo.SetGoalAchieved(ctx, trigger.Journey.ID); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventJourneyDailyGoalReached,
			AggregateType: enums.AggregateJourney,
			AggregateID:   trigger.Journey.ID,
			Actor:         &outbox.ActorRef{UserID: ownerUserID},
			Data: payloads.DailyGoalAchievedEvent{
				JourneyID:   trigger.Journey.ID,
				OwnerUserID: ownerUserID,
				DayUTC:      dayKey,
				TotalKm:     trigger.TotalKm,
				AchievedAt:  achievedAt,
			},
			Version:    1,
			OccurredAt: achievedAt,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		award = &Award{
			JourneyID:   trigger.Journey.ID,
			OwnerUserID: ownerUserID,
			DayUTC:      dayKey,
			TotalKm:     trigger.TotalKm,
			AchievedAt:  achievedAt,
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, models.DailyGoalConstraint) {
			// Another worker won the race. The day is awarded either way.
			if s.logg != nil {
				s.logg.Info(s.logg.WithUserID(ctx, ownerUserID), "daily goal already awarded by a concurrent worker")
			}
			return nil, nil
		}
		return nil, err
	}

	if award != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":    ownerUserID,
			"day_utc":    dayKey,
			"journey_id": award.JourneyID.String(),
			"total_km":   award.TotalKm.String(),
		})
		s.logg.Info(logCtx, "daily goal awarded")
	}
	return award, nil
}
