package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicLinkConstraint is the partial unique index guarding one active link
// per journey.
const PublicLinkConstraint = "ux_journey_public_links_active"

// JourneyPublicLink lets anyone holding the token read the journey without
// authenticating. At most one active link exists per journey; revoking keeps
// the row so an old token can never be resurrected by accident.
type JourneyPublicLink struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JourneyID uuid.UUID  `gorm:"column:journey_id;type:uuid;not null"`
	Token     string     `gorm:"column:token;type:text;not null;uniqueIndex"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
}

func (JourneyPublicLink) TableName() string {
	return "journey_public_links"
}
