package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook intake metrics
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracksync_webhooks_total",
			Help: "Total number of webhook notifications received",
		},
		[]string{"event_type", "outcome"},
	)

	PayloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracksync_payload_bytes_total",
			Help: "Total bytes of webhook payload data received",
		},
	)

	// Pipeline metrics
	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracksync_processing_duration_seconds",
			Help:    "Duration of the parse-classify-upsert pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StaleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracksync_stale_events_total",
			Help: "Total number of events ignored by the staleness guard",
		},
		[]string{"entity_kind"},
	)

	PlaceholderProjects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracksync_placeholder_projects_total",
			Help: "Total number of placeholder projects created for orphan issues",
		},
	)

	// Storage metrics
	StorageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracksync_storage_errors_total",
			Help: "Total number of storage errors",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracksync_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"client"},
	)

	// DLQ metrics
	DLQWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracksync_dlq_written_total",
			Help: "Total number of payloads written to the dead letter queue",
		},
		[]string{"reason"},
	)
)
