// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UserLookupsTotal tracks user lookups by result provenance.
	UserLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_user_lookups_total",
			Help: "User lookups by provenance (cache, durable, miss)",
		},
		[]string{"source"},
	)

	// UserUpsertsTotal tracks user upserts by outcome.
	UserUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_user_upserts_total",
			Help: "User upserts by outcome",
		},
		[]string{"outcome"},
	)

	// CacheWriteFailuresTotal tracks best-effort cache writes that failed.
	CacheWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_cache_write_failures_total",
			Help: "Best-effort volatile store writes that failed",
		},
	)

	// TranscriptAppendsTotal tracks transcript appends.
	TranscriptAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_transcript_appends_total",
			Help: "Conversation transcript entries appended",
		},
	)

	// WebhookEventsTotal tracks inbound webhook events by provider and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_webhook_events_total",
			Help: "Inbound webhook events by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// NotificationsTotal tracks outbound automation notifications by status.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notifications_total",
			Help: "Outbound automation notifications by status",
		},
		[]string{"status"},
	)

	// EventRelayPublishedTotal tracks events published to JetStream.
	EventRelayPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_events_published_total",
			Help: "Inbound events published to the JetStream relay",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLookup records a user lookup with its provenance.
func RecordLookup(source string) {
	UserLookupsTotal.WithLabelValues(source).Inc()
}

// RecordWebhookEvent records an inbound webhook event.
func RecordWebhookEvent(provider, outcome string) {
	WebhookEventsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordNotification records an outbound notification attempt.
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}
