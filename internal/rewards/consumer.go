package rewards

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
	"github.com/waytrackhq/waytrack-backend/pkg/outbox/payloads"
)

const rewardConsumerName = "reward-worker"

type goalChecker interface {
	CheckAndAward(ctx context.Context, journeyID uuid.UUID) (*Award, error)
}

// Consumer drives goal detection off the journey events subscription. Only
// journey.created messages are handled; everything else is acked untouched.
// Redelivery is harmless: the ledger check turns a repeat into a no-op.
type Consumer struct {
	service      goalChecker
	subscription *pubsub.Subscriber
	logg         *logger.Logger
	metrics      *metrics.ConsumerMetrics
}

// NewConsumer builds the reward consumer.
func NewConsumer(service goalChecker, subscription *pubsub.Subscriber, logg *logger.Logger, consumerMetrics *metrics.ConsumerMetrics) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("reward service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("journey events subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
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

// Process handles one decoded envelope. The return value is the ack decision:
// true acks the message, false nacks it for redelivery.
func (c *Consumer) Process(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventJourneyCreated) {
		c.logg.Debug(logCtx, "event not handled by reward worker")
		return true
	}

	started := time.Now()

	var payload payloads.JourneyCreatedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		// A payload that cannot be decoded will never decode; retrying is noise.
		c.logg.Error(logCtx, "failed to parse journey payload", err)
		return true
	}
	if payload.JourneyID == uuid.Nil {
		c.logg.Error(logCtx, "journey payload missing journey id", nil)
		return true
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"journey_id": payload.JourneyID.String(),
		"user_id":    payload.OwnerUserID,
	})

	// The payload identifies the trigger; the service re-reads the journey
	// itself so edits and deletes between publish and consume are honored.
	award, err := c.service.CheckAndAward(ctx, payload.JourneyID)
	if c.metrics != nil {
		c.metrics.ObserveDuration(rewardConsumerName, eventType, time.Since(started))
	}
	if err != nil {
		c.logg.Error(logCtx, "goal detection failed", err)
		if c.metrics != nil {
			c.metrics.IncFailed(rewardConsumerName, eventType)
		}
		return false
	}
	if c.metrics != nil {
		c.metrics.IncProcessed(rewardConsumerName, eventType)
	}

	if award == nil {
		c.logg.Debug(logCtx, "no goal to award")
	}
	return true
}
