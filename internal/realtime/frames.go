package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/enums"
)

// FrameType names a server-to-client push frame.
type FrameType string

const (
	FrameJourneyUpdated    FrameType = "JourneyUpdated"
	FrameJourneyDeleted    FrameType = "JourneyDeleted"
	FrameDailyGoalAchieved FrameType = "DailyGoalAchieved"
)

// JourneyInfo is the journey projection embedded in push frames.
type JourneyInfo struct {
	ID              uuid.UUID           `json:"id"`
	OwnerUserID     string              `json:"ownerUserId"`
	StartLocation   string              `json:"startLocation,omitempty"`
	ArrivalLocation string              `json:"arrivalLocation,omitempty"`
	TransportType   enums.TransportType `json:"transportType,omitempty"`
	DistanceKm      decimal.Decimal     `json:"distanceKm"`
}

// UserInfo identifies the user a frame is about.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Frame is the JSON document pushed over the websocket.
type Frame struct {
	Type             FrameType    `json:"type"`
	JourneyInfo      *JourneyInfo `json:"journeyInfo,omitempty"`
	UserInfo         *UserInfo    `json:"userInfo,omitempty"`
	Message          string       `json:"message,omitempty"`
	IsOwnAchievement bool         `json:"isOwnAchievement,omitempty"`
	OccurredAt       time.Time    `json:"occurredAt,omitempty"`
}

// Control frame types accepted from clients.
const (
	ControlSubscribe   = "SubscribeToJourney"
	ControlUnsubscribe = "UnsubscribeFromJourney"
)

// ControlFrame is the client-to-server message shape.
type ControlFrame struct {
	Type      string    `json:"type"`
	JourneyID uuid.UUID `json:"journeyId"`
}
