package sharing

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/internal/users"
	"github.com/waytrackhq/waytrack-backend/pkg/db"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

const tokenBytes = 24

type emailResolver interface {
	ResolveByEmails(ctx context.Context, emails []string) (map[string]*users.UserDTO, error)
}

// ShareResult reports how many grants a share request actually created or
// revoked. Addresses that do not resolve to a known user are skipped, not
// errors: the caller may not know who has signed up yet.
type ShareResult struct {
	Count int `json:"count"`
}

// PublicLinkDTO is the API shape of a journey's public link.
type PublicLinkDTO struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service grants and revokes journey access: named shares to known users by
// e-mail, and anonymous read access through an unguessable public link. Only
// the journey's owner can manage either.
type Service struct {
	repo     *Repository
	journeys journeys.Repository
	users    emailResolver
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the sharing service.
func NewService(repo *Repository, journeyRepo journeys.Repository, resolver emailResolver, logg *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		journeys: journeyRepo,
		users:    resolver,
		logg:     logg,
		now:      time.Now,
	}
}

// ShareByEmail grants the resolved users access to the owner's journey.
// Already-shared users and the owner themselves are skipped. Returns how
// many new grants were written.
func (s *Service) ShareByEmail(ctx context.Context, ownerID string, journeyID uuid.UUID, emails []string) (*ShareResult, error) {
	journey, err := s.ownedJourney(ctx, ownerID, journeyID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.users.ResolveByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}

	grantedAt := s.now().UTC()
	shared := 0
	for _, dto := range resolved {
		if dto.ID == ownerID {
			continue
		}
		exists, err := s.repo.ActiveShareExists(ctx, journey.ID, dto.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing share")
		}
		if exists {
			continue
		}
		share := models.JourneyShare{
			ID:              uuid.New(),
			JourneyID:       journey.ID,
			TargetUserID:    dto.ID,
			GrantedByUserID: ownerID,
			GrantedAt:       grantedAt,
		}
		if err := s.repo.InsertShare(ctx, &share); err != nil {
			if db.IsUniqueViolation(err, models.ShareConstraint) {
				// Concurrent request granted the same user first.
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing share")
		}
		shared++
	}

	if s.logg != nil && shared > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"journey_id": journey.ID.String(),
			"user_id":    ownerID,
			"shared":     shared,
		})
		s.logg.Info(logCtx, "journey shared")
	}
	return &ShareResult{Count: shared}, nil
}

// UnshareByEmail revokes the resolved users' active shares. Returns how many
// shares were revoked; unknown addresses and users without a share count for
// nothing.
func (s *Service) UnshareByEmail(ctx context.Context, ownerID string, journeyID uuid.UUID, emails []string) (*ShareResult, error) {
	journey, err := s.ownedJourney(ctx, ownerID, journeyID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.users.ResolveByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}

	revokedAt := s.now().UTC()
	revoked := 0
	for _, dto := range resolved {
		done, err := s.repo.RevokeShare(ctx, journey.ID, dto.ID, revokedAt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking share")
		}
		if done {
			revoked++
		}
	}
	return &ShareResult{Count: revoked}, nil
}

// CreatePublicLink returns the journey's public link, minting one when no
// active link exists. Calling it twice hands back the same token.
func (s *Service) CreatePublicLink(ctx context.Context, ownerID string, journeyID uuid.UUID) (*PublicLinkDTO, error) {
	journey, err := s.ownedJourney(ctx, ownerID, journeyID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ActiveLinkByJourney(ctx, journey.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading public link")
	}
	if existing != nil {
		return &PublicLinkDTO{Token: existing.Token, CreatedAt: existing.CreatedAt}, nil
	}

	token, err := newToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating token")
	}
	link := models.JourneyPublicLink{
		ID:        uuid.New(),
		JourneyID: journey.ID,
		Token:     token,
	}
	if err := s.repo.InsertLink(ctx, &link); err != nil {
		if db.IsUniqueViolation(err, models.PublicLinkConstraint) {
			// Concurrent request minted a link first; hand back theirs.
			winner, loadErr := s.repo.ActiveLinkByJourney(ctx, journey.ID)
			if loadErr == nil && winner != nil {
				return &PublicLinkDTO{Token: winner.Token, CreatedAt: winner.CreatedAt}, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing public link")
	}
	return &PublicLinkDTO{Token: link.Token, CreatedAt: link.CreatedAt}, nil
}

// RevokePublicLink invalidates the journey's active link. NOT_FOUND when no
// active link exists.
func (s *Service) RevokePublicLink(ctx context.Context, ownerID string, journeyID uuid.UUID) error {
	journey, err := s.ownedJourney(ctx, ownerID, journeyID)
	if err != nil {
		return err
	}

	revoked, err := s.repo.RevokeLink(ctx, journey.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking public link")
	}
	if !revoked {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active public link")
	}
	return nil
}

// PublicJourney resolves a link token to the journey it exposes. Revoked
// tokens, unknown tokens and deleted journeys all come back NOT_FOUND; a
// caller cannot tell which, on purpose.
func (s *Service) PublicJourney(ctx context.Context, token string) (*journeys.JourneyDTO, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	link, err := s.repo.FindActiveLinkByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving public link")
	}
	if link == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}

	journey, err := s.journeys.FindByID(ctx, link.JourneyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading journey")
	}
	if journey == nil || journey.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	return journeys.FromModel(journey), nil
}

// SharedWith returns the users currently granted access to the journey.
func (s *Service) SharedWith(ctx context.Context, ownerID string, journeyID uuid.UUID) ([]string, error) {
	journey, err := s.ownedJourney(ctx, ownerID, journeyID)
	if err != nil {
		return nil, err
	}
	targets, err := s.repo.ActiveShareTargets(ctx, journey.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shares")
	}
	return targets, nil
}

func (s *Service) ownedJourney(ctx context.Context, ownerID string, journeyID uuid.UUID) (*models.Journey, error) {
	journey, err := s.journeys.FindByID(ctx, journeyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading journey")
	}
	if journey == nil || journey.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journey not found")
	}
	if journey.OwnerUserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can manage sharing")
	}
	return journey, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
