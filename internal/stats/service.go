package stats

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthlyDistanceDTO is the API-facing statistics projection.
type MonthlyDistanceDTO struct {
	OwnerUserID string          `json:"ownerUserId"`
	Month       string          `json:"month"`
	TotalKm     decimal.Decimal `json:"totalKm"`
}

// Service serves the monthly distance read model.
type Service struct {
	repo *Repository
}

// NewService wires the stats service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// MonthlyDistance returns the owner's projected total for the month
// (formatted 2006-01). Months without journeys read as zero.
func (s *Service) MonthlyDistance(ctx context.Context, ownerUserID, month string) (*MonthlyDistanceDTO, error) {
	if !monthKeyPattern.MatchString(month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be formatted YYYY-MM")
	}

	row, err := s.repo.Find(ctx, ownerUserID, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading monthly distance")
	}

	dto := &MonthlyDistanceDTO{
		OwnerUserID: ownerUserID,
		Month:       month,
		TotalKm:     decimal.Zero,
	}
	if row != nil {
		dto.TotalKm = row.TotalKm
	}
	return dto, nil
}
