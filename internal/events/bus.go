package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event is a domain event staged on an aggregate.
type Event interface {
	Name() string
	OccurredOn() time.Time
}

// Recorder is implemented by aggregates that stage domain events during
// mutation. Events accumulate until a commit session collects them.
type Recorder interface {
	PendingEvents() []Event
	ClearEvents()
}

// Handler processes a dispatched event.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous in-process dispatcher keyed by event name. Handlers
// run in registration order; all handlers run even when earlier ones fail,
// and their errors are joined.
type Bus struct {
	mtx      sync.RWMutex
	handlers map[string][]Handler
}

// NewBus builds an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for the named event.
func (b *Bus) Subscribe(name string, handler Handler) {
	if handler == nil {
		return
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish delivers the event to every subscriber of its name.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}
	b.mtx.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Name()]...)
	b.mtx.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
