package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/enums"
)

// Journey is a single point-to-point trip. DistanceKm carries two decimal
// places in [0, 999.99]. IsGoalAchieved is monotonic: once true it is never
// reset by later edits or deletes.
type Journey struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID     string              `gorm:"column:owner_user_id;type:text;not null;index:idx_journeys_owner_day"`
	StartLocation   string              `gorm:"column:start_location;type:text;not null"`
	StartTime       time.Time           `gorm:"column:start_time;not null;index:idx_journeys_owner_day"`
	ArrivalLocation string              `gorm:"column:arrival_location;type:text;not null"`
	ArrivalTime     time.Time           `gorm:"column:arrival_time;not null"`
	TransportType   enums.TransportType `gorm:"column:transport_type;type:transport_type_enum;not null"`
	DistanceKm      decimal.Decimal     `gorm:"column:distance_km;type:numeric(5,2);not null"`
	IsGoalAchieved  bool                `gorm:"column:is_goal_achieved;not null;default:false"`
	IsDeleted       bool                `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Journey) TableName() string {
	return "journeys"
}
