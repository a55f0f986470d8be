package stats

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// Repository persists the monthly distance read model.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a stats repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SumMonth recomputes the owner's live journey distance for the UTC month
// bounded by [monthStart, monthEnd).
func (r *Repository) SumMonth(ctx context.Context, ownerUserID string, monthStart, monthEnd time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Journey{}).
		Select("SUM(distance_km)").
		Where("owner_user_id = ? AND is_deleted = ?", ownerUserID, false).
		Where("start_time >= ? AND start_time < ?", monthStart, monthEnd).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Upsert writes the projected total for (owner, month).
func (r *Repository) Upsert(ctx context.Context, ownerUserID, month string, totalKm decimal.Decimal) error {
	row := models.MonthlyDistance{
		OwnerUserID: ownerUserID,
		Month:       month,
		TotalKm:     totalKm,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_km", "updated_at"}),
	}).Create(&row).Error
}

// Find loads the projected row, nil when the month has no projection yet.
func (r *Repository) Find(ctx context.Context, ownerUserID, month string) (*models.MonthlyDistance, error) {
	var row models.MonthlyDistance
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND month = ?", ownerUserID, month).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
