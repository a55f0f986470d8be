package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/internal/notify"
	"github.com/waytrackhq/waytrack-backend/internal/users"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/payloads"
)

type journeyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Journey, error)
}

type fanLister interface {
	FansOf(ctx context.Context, journeyID uuid.UUID) ([]string, error)
}

type directory interface {
	GetMany(ctx context.Context, ids []string) (map[string]*users.UserDTO, error)
}

type emailQueuer interface {
	QueueEmail(ctx context.Context, req notify.EmailRequest) error
}

// Handlers turns decoded journey events into push frames and, for offline
// recipients of an achievement, queued e-mails.
type Handlers struct {
	hub      *Hub
	journeys journeyLoader
	fans     fanLister
	users    directory
	emails   emailQueuer
	logg     *logger.Logger
}

// NewHandlers wires the realtime event handlers.
func NewHandlers(hub *Hub, journeys journeyLoader, fans fanLister, dir directory, emails emailQueuer, logg *logger.Logger) *Handlers {
	return &Handlers{
		hub:      hub,
		journeys: journeys,
		fans:     fans,
		users:    dir,
		emails:   emails,
		logg:     logg,
	}
}

// HandleJourneyUpdated broadcasts an update frame to the journey's group.
func (h *Handlers) HandleJourneyUpdated(ctx context.Context, payload payloads.JourneyUpdatedEvent) error {
	journey, err := h.journeys.FindByID(ctx, payload.JourneyID)
	if err != nil {
		return err
	}
	if journey == nil || journey.IsDeleted {
		// Already gone; subscribers will hear about the delete instead.
		return nil
	}

	owner := h.lookupUser(ctx, journey.OwnerUserID)
	frame := Frame{
		Type:        FrameJourneyUpdated,
		JourneyInfo: journeyInfoOf(journey),
		UserInfo:    owner,
		OccurredAt:  payload.OccurredOn,
	}
	h.hub.Broadcast(payload.JourneyID, frame)
	return nil
}

// HandleJourneyDeleted broadcasts a delete frame to the journey's group.
func (h *Handlers) HandleJourneyDeleted(ctx context.Context, payload payloads.JourneyDeletedEvent) error {
	frame := Frame{
		Type: FrameJourneyDeleted,
		JourneyInfo: &JourneyInfo{
			ID:          payload.JourneyID,
			OwnerUserID: payload.OwnerUserID,
		},
		UserInfo:   h.lookupUser(ctx, payload.OwnerUserID),
		OccurredAt: payload.OccurredOn,
	}
	h.hub.Broadcast(payload.JourneyID, frame)
	return nil
}

// HandleDailyGoalAchieved notifies the achiever and everyone who favorited
// the triggering journey. Fans receive the frame through the journey's hub
// group, which their sessions join at connect time; the achiever gets a
// direct frame marked as their own. Offline recipients, resolved from the
// favorites list in the database, get exactly one queued e-mail.
func (h *Handlers) HandleDailyGoalAchieved(ctx context.Context, payload payloads.DailyGoalAchievedEvent) error {
	journey, err := h.journeys.FindByID(ctx, payload.JourneyID)
	if err != nil {
		return err
	}

	fans, err := h.fans.FansOf(ctx, payload.JourneyID)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(fans)+1)
	seen := map[string]struct{}{payload.OwnerUserID: {}}
	recipients = append(recipients, payload.OwnerUserID)
	for _, fan := range fans {
		if _, dup := seen[fan]; dup {
			continue
		}
		seen[fan] = struct{}{}
		recipients = append(recipients, fan)
	}

	known, err := h.users.GetMany(ctx, recipients)
	if err != nil {
		return err
	}

	achieverName := payload.OwnerUserID
	if dto, ok := known[payload.OwnerUserID]; ok {
		achieverName = dto.Name
	}
	message := fmt.Sprintf("%s reached the daily distance goal with %s km", achieverName, payload.TotalKm.String())

	var journeyInfo *JourneyInfo
	if journey != nil {
		journeyInfo = journeyInfoOf(journey)
	} else {
		journeyInfo = &JourneyInfo{ID: payload.JourneyID, OwnerUserID: payload.OwnerUserID, DistanceKm: payload.TotalKm}
	}

	frame := Frame{
		Type:        FrameDailyGoalAchieved,
		JourneyInfo: journeyInfo,
		UserInfo:    &UserInfo{ID: payload.OwnerUserID, Name: achieverName},
		Message:     message,
		OccurredAt:  payload.AchievedAt,
	}

	// The achiever's connections are skipped by the group broadcast and get
	// the frame directly, flagged as their own achievement.
	h.hub.BroadcastExcept(payload.JourneyID, frame, payload.OwnerUserID)

	own := frame
	own.IsOwnAchievement = true
	h.hub.SendToUser(payload.OwnerUserID, own)

	for _, recipient := range recipients {
		if h.hub.Presence().IsOnline(recipient) {
			continue
		}
		dto, ok := known[recipient]
		if !ok || dto.Email == "" {
			if h.logg != nil {
				h.logg.Warn(h.logg.WithUserID(ctx, recipient), "offline recipient has no e-mail on file")
			}
			continue
		}
		err := h.emails.QueueEmail(ctx, notify.EmailRequest{
			Email:     dto.Email,
			JourneyID: payload.JourneyID,
			Kind:      enums.NotificationKindDailyGoalReached,
		})
		if err != nil && h.logg != nil {
			h.logg.Error(h.logg.WithUserID(ctx, recipient), "queueing achievement e-mail failed", err)
		}
	}
	return nil
}

func (h *Handlers) lookupUser(ctx context.Context, userID string) *UserInfo {
	known, err := h.users.GetMany(ctx, []string{userID})
	if err != nil {
		return &UserInfo{ID: userID}
	}
	if dto, ok := known[userID]; ok {
		return &UserInfo{ID: userID, Name: dto.Name}
	}
	return &UserInfo{ID: userID}
}

func journeyInfoOf(journey *models.Journey) *JourneyInfo {
	return &JourneyInfo{
		ID:              journey.ID,
		OwnerUserID:     journey.OwnerUserID,
		StartLocation:   journey.StartLocation,
		ArrivalLocation: journey.ArrivalLocation,
		TransportType:   journey.TransportType,
		DistanceKm:      journey.DistanceKm,
	}
}
