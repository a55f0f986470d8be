package realtime

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// WSWriter adapts a coder/websocket connection to the FrameWriter surface.
// Every write carries its own deadline so one stuck client cannot wedge the
// pump forever.
type WSWriter struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// NewWSWriter wraps the websocket connection.
func NewWSWriter(conn *websocket.Conn, timeout time.Duration) *WSWriter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WSWriter{conn: conn, timeout: timeout}
}

// WriteFrame sends one JSON frame.
func (w *WSWriter) WriteFrame(frame Frame) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	return wsjson.Write(ctx, w.conn, frame)
}

// Close shuts the websocket down cleanly.
func (w *WSWriter) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}

// FavoriteLister resolves the journeys a user has favorited, so a fresh
// session can join their groups without the client asking.
type FavoriteLister interface {
	JourneysOf(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// RunSession drives one authenticated websocket until the client disconnects
// or the context ends: it registers presence, seeds the session with the
// user's favorited journeys, starts the write pump and consumes
// subscribe/unsubscribe control frames.
func RunSession(ctx context.Context, hub *Hub, ws *websocket.Conn, userID string, favorites FavoriteLister, cfg config.RealtimeConfig, logg *logger.Logger) {
	conn := NewConnection(userID, cfg.SendBufferSize)
	hub.Register(conn)
	defer hub.Unregister(conn)

	// Snapshot the user's favorites at connect time. A failure here only
	// costs the initial subscriptions; the client can still subscribe
	// explicitly.
	if favorites != nil {
		journeyIDs, err := favorites.JourneysOf(ctx, userID)
		if err != nil {
			if logg != nil {
				logg.Error(logg.WithUserID(ctx, userID), "loading favorites for session failed", err)
			}
		} else {
			for _, journeyID := range journeyIDs {
				hub.Subscribe(conn, journeyID)
			}
		}
	}

	go conn.WritePump(NewWSWriter(ws, cfg.WriteTimeout))

	if logg != nil {
		logg.Info(logg.WithUserID(ctx, userID), "realtime session opened")
	}

	for {
		var control ControlFrame
		if err := wsjson.Read(ctx, ws, &control); err != nil {
			conn.Close()
			if logg != nil {
				logg.Info(logg.WithUserID(ctx, userID), "realtime session closed")
			}
			return
		}
		switch control.Type {
		case ControlSubscribe:
			hub.Subscribe(conn, control.JourneyID)
		case ControlUnsubscribe:
			hub.Unsubscribe(conn, control.JourneyID)
		default:
			if logg != nil {
				logg.Debug(logg.WithUserID(ctx, userID), "ignoring unknown control frame")
			}
		}
	}
}
