package favorites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// Repository persists journey favorites.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a favorites repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add marks the journey as favorited. Re-adding an existing favorite is a
// no-op; returns true when a new row was written.
func (r *Repository) Add(ctx context.Context, journeyID uuid.UUID, userID string) (bool, error) {
	row := models.JourneyFavorite{JourneyID: journeyID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Remove drops the favorite. Returns true when a row was deleted.
func (r *Repository) Remove(ctx context.Context, journeyID uuid.UUID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("journey_id = ? AND user_id = ?", journeyID, userID).
		Delete(&models.JourneyFavorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the user has favorited the journey.
func (r *Repository) Exists(ctx context.Context, journeyID uuid.UUID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JourneyFavorite{}).
		Where("journey_id = ? AND user_id = ?", journeyID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListUserIDsByJourney returns the subjects who favorited the journey, in
// favoriting order.
func (r *Repository) ListUserIDsByJourney(ctx context.Context, journeyID uuid.UUID) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.JourneyFavorite{}).
		Where("journey_id = ?", journeyID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// ListJourneyIDsByUser returns the journeys the user has favorited, most
// recent first.
func (r *Repository) ListJourneyIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var journeyIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.JourneyFavorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("journey_id", &journeyIDs).Error
	return journeyIDs, err
}
