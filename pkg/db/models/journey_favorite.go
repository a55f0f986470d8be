package models

import (
	"time"

	"github.com/google/uuid"
)

// JourneyFavorite marks a user's interest in a journey. Favoriting users
// receive realtime updates and goal notifications for that journey.
type JourneyFavorite struct {
	JourneyID uuid.UUID `gorm:"column:journey_id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;type:text;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (JourneyFavorite) TableName() string {
	return "journey_favorites"
}
