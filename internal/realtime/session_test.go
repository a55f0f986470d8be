package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/pkg/config"
)

type fakeFavoriteLister struct {
	journeys map[string][]uuid.UUID
	err      error
}

func (f *fakeFavoriteLister) JourneysOf(_ context.Context, userID string) ([]uuid.UUID, error) {
	return f.journeys[userID], f.err
}

func sessionServer(t *testing.T, hub *Hub, userID string, favorites FavoriteLister) *httptest.Server {
	t.Helper()
	cfg := config.RealtimeConfig{SendBufferSize: 8, WriteTimeout: time.Second}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		RunSession(r.Context(), hub, ws, userID, favorites, cfg, nil)
	}))
	t.Cleanup(server.Close)
	return server
}

func dialSession(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func waitForDelivery(t *testing.T, hub *Hub, journeyID uuid.UUID, frame Frame) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Broadcast(journeyID, frame) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no subscribed connection accepted the frame")
}

func TestSessionJoinsFavoritedJourneysAtConnect(t *testing.T) {
	hub := NewHub(NewPresence())
	favorited := uuid.New()
	other := uuid.New()
	favorites := &fakeFavoriteLister{journeys: map[string][]uuid.UUID{
		"auth0|fan": {favorited},
	}}

	server := sessionServer(t, hub, "auth0|fan", favorites)
	conn := dialSession(t, server)

	// The client sends nothing; the favorited journey's group must still
	// deliver to this session.
	waitForDelivery(t, hub, favorited, Frame{Type: FrameJourneyUpdated})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var frame Frame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != FrameJourneyUpdated {
		t.Fatalf("unexpected frame type %s", frame.Type)
	}

	if hub.Broadcast(other, Frame{Type: FrameJourneyUpdated}) != 0 {
		t.Fatal("session must not be in groups the user never favorited")
	}
}

func TestSessionSurvivesFavoriteLookupFailure(t *testing.T) {
	hub := NewHub(NewPresence())
	journeyID := uuid.New()
	favorites := &fakeFavoriteLister{err: context.DeadlineExceeded}

	server := sessionServer(t, hub, "auth0|fan", favorites)
	conn := dialSession(t, server)

	// Explicit subscribe still works when the snapshot failed.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ControlFrame{Type: ControlSubscribe, JourneyID: journeyID}); err != nil {
		t.Fatalf("write control frame: %v", err)
	}

	waitForDelivery(t, hub, journeyID, Frame{Type: FrameJourneyUpdated})

	var frame Frame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != FrameJourneyUpdated {
		t.Fatalf("unexpected frame type %s", frame.Type)
	}
}
