package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyGoalConstraint is the primary-key constraint the reward worker relies
// on: losing an insert race on it means another worker already awarded the day.
const DailyGoalConstraint = "daily_goals_pkey"

// DailyGoal is the per-user per-day achievement ledger row. DayUTC is the
// calendar day in UTC, formatted 2006-01-02.
type DailyGoal struct {
	OwnerUserID       string          `gorm:"column:owner_user_id;type:text;primaryKey"`
	DayUTC            string          `gorm:"column:day_utc;type:date;primaryKey"`
	AchievedJourneyID uuid.UUID       `gorm:"column:achieved_journey_id;type:uuid;not null"`
	TotalKm           decimal.Decimal `gorm:"column:total_km;type:numeric(8,2);not null"`
	AchievedAtUTC     time.Time       `gorm:"column:achieved_at_utc;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (DailyGoal) TableName() string {
	return "daily_goals"
}
