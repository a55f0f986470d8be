package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func drainOne(t *testing.T, conn *Connection) Frame {
	t.Helper()
	select {
	case frame := <-conn.send:
		return frame
	case <-time.After(time.Second):
		t.Fatal("expected a buffered frame")
		return Frame{}
	}
}

func TestPresenceTracksMultipleConnections(t *testing.T) {
	presence := NewPresence()
	first := NewConnection("auth0|walker-1", 4)
	second := NewConnection("auth0|walker-1", 4)

	presence.Add(first)
	presence.Add(second)
	if !presence.IsOnline("auth0|walker-1") {
		t.Fatal("user with connections should be online")
	}

	presence.Remove(first)
	if !presence.IsOnline("auth0|walker-1") {
		t.Fatal("user should stay online while one connection remains")
	}

	presence.Remove(second)
	if presence.IsOnline("auth0|walker-1") {
		t.Fatal("user without connections should be offline")
	}
}

func TestPresenceConcurrentChurnPerUser(t *testing.T) {
	presence := NewPresence()

	const users = 8
	const connsPerUser = 16
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("auth0|walker-%d", u)
		for c := 0; c < connsPerUser; c++ {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				conn := NewConnection(userID, 1)
				presence.Add(conn)
				presence.IsOnline(userID)
				presence.ConnectionsOf(userID)
				presence.Remove(conn)
			}(userID)
		}
	}
	wg.Wait()

	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("auth0|walker-%d", u)
		if presence.IsOnline(userID) {
			t.Fatalf("%s should be offline after all connections left", userID)
		}
	}

	// An entry retired by the churn above must not swallow a later Add.
	conn := NewConnection("auth0|walker-0", 1)
	presence.Add(conn)
	if !presence.IsOnline("auth0|walker-0") {
		t.Fatal("re-added user should be online")
	}
	presence.Remove(conn)
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub(NewPresence())
	journeyID := uuid.New()

	fan := NewConnection("auth0|fan", 4)
	bystander := NewConnection("auth0|bystander", 4)
	hub.Register(fan)
	hub.Register(bystander)
	hub.Subscribe(fan, journeyID)

	delivered := hub.Broadcast(journeyID, Frame{Type: FrameJourneyUpdated})
	if delivered != 1 {
		t.Fatalf("expected one delivery, got %d", delivered)
	}
	frame := drainOne(t, fan)
	if frame.Type != FrameJourneyUpdated {
		t.Fatalf("unexpected frame type %s", frame.Type)
	}
	if len(bystander.send) != 0 {
		t.Fatal("unsubscribed connection must not receive group frames")
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(NewPresence())
	journeyID := uuid.New()

	slow := NewConnection("auth0|slow", 1)
	hub.Register(slow)
	hub.Subscribe(slow, journeyID)

	if got := hub.Broadcast(journeyID, Frame{Type: FrameJourneyUpdated}); got != 1 {
		t.Fatalf("first frame should fit, got %d", got)
	}
	// Buffer is full now; fire-and-forget drops instead of blocking.
	if got := hub.Broadcast(journeyID, Frame{Type: FrameJourneyUpdated}); got != 0 {
		t.Fatalf("second frame should be dropped, got %d", got)
	}
}

func TestUnregisterLeavesAllGroups(t *testing.T) {
	hub := NewHub(NewPresence())
	journeyID := uuid.New()

	conn := NewConnection("auth0|fan", 4)
	hub.Register(conn)
	hub.Subscribe(conn, journeyID)
	hub.Unregister(conn)

	if hub.Presence().IsOnline("auth0|fan") {
		t.Fatal("unregistered connection should drop presence")
	}
	if got := hub.Broadcast(journeyID, Frame{Type: FrameJourneyDeleted}); got != 0 {
		t.Fatalf("no deliveries expected after unregister, got %d", got)
	}
}

func TestSendToUserFansOutToAllConnections(t *testing.T) {
	hub := NewHub(NewPresence())
	phone := NewConnection("auth0|walker-1", 4)
	laptop := NewConnection("auth0|walker-1", 4)
	hub.Register(phone)
	hub.Register(laptop)

	if !hub.SendToUser("auth0|walker-1", Frame{Type: FrameDailyGoalAchieved}) {
		t.Fatal("expected delivery to at least one connection")
	}
	if len(phone.send) != 1 || len(laptop.send) != 1 {
		t.Fatal("both connections should receive the frame")
	}
	if hub.SendToUser("auth0|nobody", Frame{Type: FrameDailyGoalAchieved}) {
		t.Fatal("offline user must report no delivery")
	}
}

type failingWriter struct {
	wrote  int
	closed bool
}

func (w *failingWriter) WriteFrame(Frame) error {
	w.wrote++
	return errors.New("peer gone")
}

func (w *failingWriter) Close() error {
	w.closed = true
	return nil
}

func TestWritePumpClosesOnWriteFailure(t *testing.T) {
	conn := NewConnection("auth0|walker-1", 4)
	writer := &failingWriter{}

	conn.Enqueue(Frame{Type: FrameJourneyUpdated})
	done := make(chan struct{})
	go func() {
		conn.WritePump(writer)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump should stop after a failed write")
	}
	if writer.wrote != 1 || !writer.closed {
		t.Fatalf("unexpected writer state %+v", writer)
	}
	if conn.Enqueue(Frame{Type: FrameJourneyUpdated}) {
		t.Fatal("closed connection must reject frames")
	}
}
