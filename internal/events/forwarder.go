package events

import (
	"context"

	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
)

// Integration is implemented by domain events that also travel to external
// consumers. The returned DomainEvent is what lands in the outbox table.
type Integration interface {
	Event
	Integration() outbox.DomainEvent
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Forwarder bridges after-commit domain events into the transactional
// outbox. It runs as a bus subscriber: each event gets its own short
// transaction, and failures are logged but never propagated, so a broken
// broker path cannot unwind the originating write.
type Forwarder struct {
	tx     txRunner
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewForwarder wires the forwarder.
func NewForwarder(tx txRunner, outboxSvc outboxEmitter, logg *logger.Logger) *Forwarder {
	return &Forwarder{tx: tx, outbox: outboxSvc, logg: logg}
}

// Handle implements the bus Handler signature.
func (f *Forwarder) Handle(ctx context.Context, event Event) error {
	integration, ok := event.(Integration)
	if !ok {
		return nil
	}
	domainEvent := integration.Integration()

	// EmitIfNotExists keeps re-dispatched events from stacking up: only one
	// unpublished row per event/aggregate pair is ever queued, and the
	// realtime consumers re-read current state anyway.
	err := f.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return f.outbox.EmitIfNotExists(ctx, tx, domainEvent)
	})
	if err != nil && f.logg != nil {
		logCtx := f.logg.WithFields(ctx, map[string]any{
			"event_type":   domainEvent.EventType,
			"aggregate_id": domainEvent.AggregateID.String(),
		})
		f.logg.Error(logCtx, "forwarding event to outbox failed", err)
	}
	return nil
}

// Register subscribes the forwarder for each of the given event names.
func (f *Forwarder) Register(bus *Bus, names ...string) {
	for _, name := range names {
		bus.Subscribe(name, f.Handle)
	}
}
