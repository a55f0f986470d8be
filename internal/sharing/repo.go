package sharing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// Repository persists journey shares and public links.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a sharing repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveShareExists reports whether the target user currently holds an
// unrevoked share on the journey.
func (r *Repository) ActiveShareExists(ctx context.Context, journeyID uuid.UUID, targetUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JourneyShare{}).
		Where("journey_id = ? AND target_user_id = ? AND revoked_at IS NULL", journeyID, targetUserID).
		Count(&count).Error
	return count > 0, err
}

// InsertShare writes a new grant.
func (r *Repository) InsertShare(ctx context.Context, share *models.JourneyShare) error {
	return r.db.WithContext(ctx).Create(share).Error
}

// RevokeShare marks the target user's active share as revoked. Returns true
// when a share was actually revoked.
func (r *Repository) RevokeShare(ctx context.Context, journeyID uuid.UUID, targetUserID string, revokedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.JourneyShare{}).
		Where("journey_id = ? AND target_user_id = ? AND revoked_at IS NULL", journeyID, targetUserID).
		Update("revoked_at", revokedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ActiveShareTargets returns the users currently holding a share on the
// journey, in grant order.
func (r *Repository) ActiveShareTargets(ctx context.Context, journeyID uuid.UUID) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.JourneyShare{}).
		Where("journey_id = ? AND revoked_at IS NULL", journeyID).
		Order("granted_at ASC").
		Pluck("target_user_id", &userIDs).Error
	return userIDs, err
}

// ActiveLinkByJourney returns the journey's active public link, or nil.
func (r *Repository) ActiveLinkByJourney(ctx context.Context, journeyID uuid.UUID) (*models.JourneyPublicLink, error) {
	var link models.JourneyPublicLink
	err := r.db.WithContext(ctx).
		Where("journey_id = ? AND revoked_at IS NULL", journeyID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// InsertLink writes a new public link.
func (r *Repository) InsertLink(ctx context.Context, link *models.JourneyPublicLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// RevokeLink marks the journey's active link as revoked. Returns true when a
// link was actually revoked.
func (r *Repository) RevokeLink(ctx context.Context, journeyID uuid.UUID, revokedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.JourneyPublicLink{}).
		Where("journey_id = ? AND revoked_at IS NULL", journeyID).
		Update("revoked_at", revokedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindActiveLinkByToken resolves a token to its unrevoked link, or nil.
func (r *Repository) FindActiveLinkByToken(ctx context.Context, token string) (*models.JourneyPublicLink, error) {
	var link models.JourneyPublicLink
	err := r.db.WithContext(ctx).
		Where("token = ? AND revoked_at IS NULL", token).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}
