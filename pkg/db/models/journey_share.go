package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareConstraint is the partial unique index guarding one active share per
// journey and target user.
const ShareConstraint = "ux_journey_shares_active"

// JourneyShare grants a specific user read access to someone else's journey.
// Revoking sets RevokedAt instead of deleting, so a grant history remains.
type JourneyShare struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JourneyID       uuid.UUID  `gorm:"column:journey_id;type:uuid;not null"`
	TargetUserID    string     `gorm:"column:target_user_id;type:text;not null"`
	GrantedByUserID string     `gorm:"column:granted_by_user_id;type:text;not null"`
	GrantedAt       time.Time  `gorm:"column:granted_at;not null"`
	RevokedAt       *time.Time `gorm:"column:revoked_at"`
}

func (JourneyShare) TableName() string {
	return "journey_shares"
}
