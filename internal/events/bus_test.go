package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	name string
	at   time.Time
}

func (e testEvent) Name() string          { return e.name }
func (e testEvent) OccurredOn() time.Time { return e.at }

type testAggregate struct {
	pending []Event
}

func (a *testAggregate) PendingEvents() []Event { return append([]Event(nil), a.pending...) }
func (a *testAggregate) ClearEvents()           { a.pending = nil }

func TestBusPublishesToAllSubscribersOfName(t *testing.T) {
	bus := NewBus()
	var first, second, other int

	bus.Subscribe("journey.created", func(context.Context, Event) error {
		first++
		return nil
	})
	bus.Subscribe("journey.created", func(context.Context, Event) error {
		second++
		return nil
	})
	bus.Subscribe("journey.deleted", func(context.Context, Event) error {
		other++
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{name: "journey.created"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if first != 1 || second != 1 {
		t.Fatalf("expected both subscribers invoked, got %d/%d", first, second)
	}
	if other != 0 {
		t.Fatalf("unrelated subscriber should not run")
	}
}

func TestBusRunsRemainingHandlersAfterFailure(t *testing.T) {
	bus := NewBus()
	var reached bool
	boom := errors.New("boom")

	bus.Subscribe("journey.updated", func(context.Context, Event) error { return boom })
	bus.Subscribe("journey.updated", func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{name: "journey.updated"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to surface, got %v", err)
	}
	if !reached {
		t.Fatal("later handler should still run")
	}
}

func TestSessionDispatchesInStagingOrderThenClears(t *testing.T) {
	bus := NewBus()
	var order []string
	for _, name := range []string{"journey.created", "journey.updated"} {
		bus.Subscribe(name, func(_ context.Context, e Event) error {
			order = append(order, e.Name())
			return nil
		})
	}

	agg := &testAggregate{pending: []Event{
		testEvent{name: "journey.created"},
		testEvent{name: "journey.updated"},
	}}

	session := NewSession(bus)
	session.Track(agg)
	session.Track(agg)

	if err := session.Dispatch(context.Background()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(order) != 2 || order[0] != "journey.created" || order[1] != "journey.updated" {
		t.Fatalf("unexpected dispatch order %v", order)
	}
	if len(agg.pending) != 0 {
		t.Fatal("events should be cleared after dispatch")
	}

	order = nil
	if err := session.Dispatch(context.Background()); err != nil {
		t.Fatalf("second dispatch errored: %v", err)
	}
	if len(order) != 0 {
		t.Fatal("a session must not dispatch twice")
	}
}

func TestSessionDiscardNeverDispatches(t *testing.T) {
	bus := NewBus()
	var dispatched int
	bus.Subscribe("journey.created", func(context.Context, Event) error {
		dispatched++
		return nil
	})

	agg := &testAggregate{pending: []Event{testEvent{name: "journey.created"}}}
	session := NewSession(bus)
	session.Track(agg)
	session.Discard()

	if err := session.Dispatch(context.Background()); err != nil {
		t.Fatalf("dispatch after discard errored: %v", err)
	}
	if dispatched != 0 {
		t.Fatal("discarded session must not dispatch")
	}
	if len(agg.pending) != 0 {
		t.Fatal("discard should clear staged events")
	}
}

func TestSessionDispatchErrorSurfaces(t *testing.T) {
	bus := NewBus()
	boom := errors.New("handler down")
	bus.Subscribe("journey.created", func(context.Context, Event) error { return boom })

	agg := &testAggregate{pending: []Event{testEvent{name: "journey.created"}}}
	session := NewSession(bus)
	session.Track(agg)

	if err := session.Dispatch(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}
