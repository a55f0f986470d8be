package journeys

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a journeys repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, journey *models.Journey) error {
	return r.db.WithContext(ctx).Create(journey).Error
}

func (r *repository) Save(ctx context.Context, journey *models.Journey) error {
	return r.db.WithContext(ctx).Save(journey).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Journey, error) {
	var journey models.Journey
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&journey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &journey, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerUserID string, params ListParams) ([]models.Journey, int64, error) {
	params = params.Normalize()
	base := r.db.WithContext(ctx).
		Model(&models.Journey{}).
		Where("owner_user_id = ? AND is_deleted = ?", ownerUserID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Journey
	err := base.
		Order("start_time DESC").
		Order("id DESC").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOwnerDay returns the owner's live journeys whose start time falls in
// [dayStart, dayEnd), ordered by (start_time, id). The ordering is what makes
// goal detection deterministic under equal start times.
func (r *repository) ListByOwnerDay(ctx context.Context, ownerUserID string, dayStart, dayEnd time.Time) ([]models.Journey, error) {
	var rows []models.Journey
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND is_deleted = ?", ownerUserID, false).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Order("start_time ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetGoalAchieved flips the monotonic goal flag. Returns false when the flag
// was already set or the journey does not exist.
func (r *repository) SetGoalAchieved(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Journey{}).
		Where("id = ? AND is_goal_achieved = ?", id, false).
		Update("is_goal_achieved", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
