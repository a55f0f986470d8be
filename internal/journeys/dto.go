package journeys

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
)

// JourneyInput carries the user-editable fields of a journey. The same shape
// serves create and full update.
type JourneyInput struct {
	StartLocation   string
	StartTime       time.Time
	ArrivalLocation string
	ArrivalTime     time.Time
	TransportType   enums.TransportType
	DistanceKm      decimal.Decimal
}

// JourneyDTO is the API-facing projection of a journey row.
type JourneyDTO struct {
	ID              uuid.UUID           `json:"id"`
	OwnerUserID     string              `json:"ownerUserId"`
	StartLocation   string              `json:"startLocation"`
	StartTime       time.Time           `json:"startTime"`
	ArrivalLocation string              `json:"arrivalLocation"`
	ArrivalTime     time.Time           `json:"arrivalTime"`
	TransportType   enums.TransportType `json:"transportType"`
	DistanceKm      decimal.Decimal     `json:"distanceKm"`
	IsGoalAchieved  bool                `json:"isGoalAchieved"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ListParams is the pagination surface for journey listings.
type ListParams struct {
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps pagination to sane bounds.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Offset converts the page selector into a SQL offset.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// JourneyPage is a paginated listing result.
type JourneyPage struct {
	Items    []JourneyDTO `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int64        `json:"total"`
}

// FromModel maps a journey row to its DTO.
func FromModel(m *models.Journey) *JourneyDTO {
	if m == nil {
		return nil
	}
	return &JourneyDTO{
		ID:              m.ID,
		OwnerUserID:     m.OwnerUserID,
		StartLocation:   m.StartLocation,
		StartTime:       m.StartTime,
		ArrivalLocation: m.ArrivalLocation,
		ArrivalTime:     m.ArrivalTime,
		TransportType:   m.TransportType,
		DistanceKm:      m.DistanceKm,
		IsGoalAchieved:  m.IsGoalAchieved,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromModels maps journey rows to DTOs preserving order.
func FromModels(rows []models.Journey) []JourneyDTO {
	out := make([]JourneyDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
