package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records processing outcomes for message consumers.
type ConsumerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_process_duration_seconds",
		Help:    "Duration of message processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"consumer", "event_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_processed",
		Help: "Messages processed and acked.",
	}, []string{"consumer", "event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_failed",
		Help: "Messages that failed processing and were nacked.",
	}, []string{"consumer", "event_type"})
	reg.MustRegister(duration, success, failure)
	return &ConsumerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the processing duration for an event type.
func (c *ConsumerMetrics) ObserveDuration(consumer, eventType string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncProcessed increments the processed counter.
func (c *ConsumerMetrics) IncProcessed(consumer, eventType string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter.
func (c *ConsumerMetrics) IncFailed(consumer, eventType string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// PublisherMetrics records outbox publishing outcomes per topic.
type PublisherMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	dlq       *prometheus.CounterVec
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox rows successfully published.",
	}, []string{"topic"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures",
		Help: "Outbox publish attempts that failed.",
	}, []string{"topic"})
	dlq := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered",
		Help: "Outbox rows moved to the DLQ.",
	}, []string{"reason"})
	reg.MustRegister(published, failed, dlq)
	return &PublisherMetrics{
		published: published,
		failed:    failed,
		dlq:       dlq,
	}
}

// IncPublished increments the published counter for a topic.
func (p *PublisherMetrics) IncPublished(topic string) {
	if p == nil || p.published == nil {
		return
	}
	p.published.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncFailed increments the failure counter for a topic.
func (p *PublisherMetrics) IncFailed(topic string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncDeadLettered increments the DLQ counter for a reason.
func (p *PublisherMetrics) IncDeadLettered(reason string) {
	if p == nil || p.dlq == nil {
		return
	}
	p.dlq.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
