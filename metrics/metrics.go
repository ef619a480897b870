// Package metrics provides Prometheus metrics for permanode.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "permanode"

var (
	latestMu   sync.Mutex
	latestSeen uint32
)

var (
	// MessagesReceived counts raw feed payloads per feed type.
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of payloads received from MQTT feeds",
		},
		[]string{"feed_type"},
	)

	// MessagesStored counts storage writes by kind (message, metadata).
	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_stored_total",
			Help:      "Total number of records written to storage",
		},
		[]string{"keyspace", "kind"},
	)

	// DuplicatesDropped counts payloads dropped by collector dedupe.
	DuplicatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Total number of duplicate payloads dropped by collectors",
		},
		[]string{"kind"},
	)

	MilestonesSolidified = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_solidified_total",
			Help:      "Total number of milestones whose cone was fully stored",
		},
	)

	MilestonesArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_archived_total",
			Help:      "Total number of milestones written to archive files",
		},
	)

	// LatestMilestone tracks the highest milestone index seen on any feed.
	LatestMilestone = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_milestone_index",
			Help:      "Highest milestone index observed",
		},
	)

	// StorageErrors counts failed storage operations.
	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Total number of failed storage operations",
		},
		[]string{"operation"},
	)

	// NodeRequests counts node REST calls by outcome.
	NodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_requests_total",
			Help:      "Total number of node API requests",
		},
		[]string{"operation", "status"},
	)

	// APIRequestDuration measures query API latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	// FeedConnected tracks feed connection status (1 = connected, 0 = disconnected).
	FeedConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_connected",
			Help:      "MQTT feed connection status (1 = connected, 0 = disconnected)",
		},
		[]string{"url", "feed_type"},
	)

	// EventsPublished counts Redis stream publishes.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published to Redis Streams",
		},
		[]string{"stream", "status"},
	)
)

// RecordStorageError records a failed storage operation.
func RecordStorageError(operation string) {
	StorageErrors.WithLabelValues(operation).Inc()
}

// SetFeedConnected sets the connection gauge for a feed.
func SetFeedConnected(url, feedType string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	FeedConnected.WithLabelValues(url, feedType).Set(v)
}

// ObserveMilestone raises LatestMilestone when index is newer.
func ObserveMilestone(index uint32) {
	latestMu.Lock()
	defer latestMu.Unlock()
	if index > latestSeen {
		latestSeen = index
		LatestMilestone.Set(float64(index))
	}
}
