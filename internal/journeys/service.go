package journeys

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/internal/events"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the journey write path: every mutation runs in a transaction,
// and staged domain events are dispatched only after commit.
type Service struct {
	repo Repository
	tx   txRunner
	bus  *events.Bus
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the journeys service.
func NewService(repo Repository, tx txRunner, bus *events.Bus, logg *logger.Logger) *Service {
	return &Service{repo: repo, tx: tx, bus: bus, logg: logg, now: time.Now}
}

// Create logs a new journey for the subject.
func (s *Service) Create(ctx context.Context, ownerUserID string, input JourneyInput) (*JourneyDTO, error) {
	agg, err := NewAggregate(ownerUserID, input, s.now().UTC())
	if err != nil {
		return nil, err
	}

	journey := agg.Journey()
	session := events.NewSession(s.bus)
	session.Track(agg)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Insert(ctx, &journey)
	})
	if err != nil {
		session.Discard()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting journey")
	}
	s.dispatch(ctx, session, journey.ID)

	return FromModel(&journey), nil
}

// Update edits a journey owned by the subject.
func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, input JourneyInput) (*JourneyDTO, error) {
	agg, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := agg.Update(input, s.now().UTC()); err != nil {
		return nil, err
	}

	journey := agg.Journey()
	session := events.NewSession(s.bus)
	session.Track(agg)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, &journey)
	})
	if err != nil {
		session.Discard()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving journey")
	}
	s.dispatch(ctx, session, journey.ID)

	return FromModel(&journey), nil
}

// Delete soft-deletes a journey owned by the subject. The row survives so
// achievement history keeps pointing at it.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	agg, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := agg.Delete(s.now().UTC()); err != nil {
		return err
	}

	journey := agg.Journey()
	session := events.NewSession(s.bus)
	session.Track(agg)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, &journey)
	})
	if err != nil {
		session.Discard()
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting journey")
	}
	s.dispatch(ctx, session, journey.ID)

	return nil
}

// Get returns a single live journey visible to any authenticated user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*JourneyDTO, error) {
	journey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading journey")
	}
	if journey == nil || journey.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	return FromModel(journey), nil
}

// List returns the subject's live journeys, newest start first.
func (s *Service) List(ctx context.Context, ownerUserID string, params ListParams) (*JourneyPage, error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListByOwner(ctx, ownerUserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing journeys")
	}
	return &JourneyPage{
		Items:    FromModels(rows),
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}, nil
}

func (s *Service) loadOwned(ctx context.Context, userID string, id uuid.UUID) (*Aggregate, error) {
	journey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading journey")
	}
	if journey == nil || journey.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	agg := Load(*journey)
	if !agg.IsOwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "journey belongs to another user")
	}
	return agg, nil
}

// dispatch delivers after-commit events. The write is already durable, so a
// subscriber failure is logged rather than turned into a request error.
func (s *Service) dispatch(ctx context.Context, session *events.Session, journeyID uuid.UUID) {
	if err := session.Dispatch(ctx); err != nil && s.logg != nil {
		logCtx := s.logg.WithJourneyID(ctx, journeyID.String())
		s.logg.Error(logCtx, "dispatching journey events failed", err)
	}
}
