package journeys

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// Repository exposes journey persistence. WithTx rebinds the repository to a
// transaction handle so callers can compose writes atomically.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Insert(ctx context.Context, journey *models.Journey) error
	Save(ctx context.Context, journey *models.Journey) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Journey, error)
	ListByOwner(ctx context.Context, ownerUserID string, params ListParams) ([]models.Journey, int64, error)
	ListByOwnerDay(ctx context.Context, ownerUserID string, dayStart, dayEnd time.Time) ([]models.Journey, error)
	SetGoalAchieved(ctx context.Context, id uuid.UUID) (bool, error)
}
