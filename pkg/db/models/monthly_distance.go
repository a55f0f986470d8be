package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyDistance is the statistics read model projected from journey events.
// Month is formatted 2006-01 (UTC).
type MonthlyDistance struct {
	OwnerUserID string          `gorm:"column:owner_user_id;type:text;primaryKey"`
	Month       string          `gorm:"column:month;type:char(7);primaryKey"`
	TotalKm     decimal.Decimal `gorm:"column:total_km;type:numeric(8,2);not null"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MonthlyDistance) TableName() string {
	return "monthly_distances"
}
