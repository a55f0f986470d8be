package favorites

import (
	"context"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

// Service manages the favorite relation that drives realtime fan-out groups
// and goal e-mail recipients.
type Service struct {
	repo     *Repository
	journeys journeys.Repository
}

// NewService wires the favorites service.
func NewService(repo *Repository, journeyRepo journeys.Repository) *Service {
	return &Service{repo: repo, journeys: journeyRepo}
}

// Toggle flips the favorite state for a live journey. Returns the resulting
// state: true when the journey is now favorited.
func (s *Service) Toggle(ctx context.Context, userID string, journeyID uuid.UUID) (bool, error) {
	journey, err := s.journeys.FindByID(ctx, journeyID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading journey")
	}
	if journey == nil || journey.IsDeleted {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}

	exists, err := s.repo.Exists(ctx, journeyID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking favorite")
	}
	if exists {
		if _, err := s.repo.Remove(ctx, journeyID, userID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing favorite")
		}
		return false, nil
	}
	if _, err := s.repo.Add(ctx, journeyID, userID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding favorite")
	}
	return true, nil
}

// FansOf returns the subjects who favorited the journey.
func (s *Service) FansOf(ctx context.Context, journeyID uuid.UUID) ([]string, error) {
	userIDs, err := s.repo.ListUserIDsByJourney(ctx, journeyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing favoriting users")
	}
	return userIDs, nil
}

// JourneysOf returns the journey ids the user has favorited.
func (s *Service) JourneysOf(ctx context.Context, userID string) ([]uuid.UUID, error) {
	journeyIDs, err := s.repo.ListJourneyIDsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing favorites")
	}
	return journeyIDs, nil
}
