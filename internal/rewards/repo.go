package rewards

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// Repository persists the daily-goal ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Find loads the ledger row for (owner, day), nil when the day is unawarded.
func (r *Repository) Find(ctx context.Context, ownerUserID, dayUTC string) (*models.DailyGoal, error) {
	var row models.DailyGoal
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND day_utc = ?", ownerUserID, dayUTC).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Insert writes the ledger row. A unique violation on the primary key means
// another worker already awarded the day.
func (r *Repository) Insert(ctx context.Context, row *models.DailyGoal) error {
	return r.db.WithContext(ctx).Create(row).Error
}
