package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
	"github.com/waytrackhq/waytrack-backend/pkg/metrics"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/idempotency"
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/payloads"
)

const realtimeConsumerName = "realtime"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

var _ idempotencyChecker = (*idempotency.Manager)(nil)

// Consumer feeds journey events from the realtime subscription into the hub
// handlers. Redis SETNX keeps redeliveries from producing duplicate frames
// or e-mails.
type Consumer struct {
	handlers     *Handlers
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
	metrics      *metrics.ConsumerMetrics
}

// NewConsumer builds the realtime consumer.
func NewConsumer(handlers *Handlers, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger, consumerMetrics *metrics.ConsumerMetrics) (*Consumer, error) {
	if handlers == nil {
		return nil, fmt.Errorf("realtime handlers required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("journey events subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		handlers:     handlers,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
		metrics:      consumerMetrics,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		eventType := msg.Attributes["event_type"]

		var envelope outbox.PayloadEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			c.logg.Error(ctx, "failed to decode envelope", err)
			msg.Ack()
			return
		}

		if c.Process(ctx, eventType, envelope) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Process handles one decoded envelope; the return value is the ack decision.
func (c *Consumer) Process(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	switch eventType {
	case string(enums.EventJourneyUpdated),
		string(enums.EventJourneyDeleted),
		string(enums.EventJourneyDailyGoalReached):
	default:
		c.logg.Debug(logCtx, "event not handled by realtime consumer")
		return true
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, realtimeConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Debug(logCtx, "event already processed")
		return true
	}

	started := time.Now()
	err = c.dispatch(ctx, eventType, envelope)
	if c.metrics != nil {
		c.metrics.ObserveDuration(realtimeConsumerName, eventType, time.Since(started))
	}
	if err != nil {
		c.logg.Error(logCtx, "realtime handling failed", err)
		_ = c.idempotency.Delete(ctx, realtimeConsumerName, eventID)
		if c.metrics != nil {
			c.metrics.IncFailed(realtimeConsumerName, eventType)
		}
		return false
	}
	if c.metrics != nil {
		c.metrics.IncProcessed(realtimeConsumerName, eventType)
	}
	return true
}

func (c *Consumer) dispatch(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope) error {
	switch eventType {
	case string(enums.EventJourneyUpdated):
		var payload payloads.JourneyUpdatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "failed to parse journey.updated payload", err)
			return nil
		}
		return c.handlers.HandleJourneyUpdated(ctx, payload)
	case string(enums.EventJourneyDeleted):
		var payload payloads.JourneyDeletedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "failed to parse journey.deleted payload", err)
			return nil
		}
		return c.handlers.HandleJourneyDeleted(ctx, payload)
	case string(enums.EventJourneyDailyGoalReached):
		var payload payloads.DailyGoalAchievedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logg.Error(ctx, "failed to parse achievement payload", err)
			return nil
		}
		return c.handlers.HandleDailyGoalAchieved(ctx, payload)
	}
	return nil
}
