// Package metrics provides Prometheus instrumentation for recommendations and metadata lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests counts workflow requests by outcome
	// ("ok", "degraded", "unknown_track", "no_recommendations").
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stairway_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stairway_recommend_duration_seconds",
			Help:    "Duration of recommend-and-enrich requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// MetadataLookups counts source lookups by source and outcome ("success", "failure", "rejected").
	MetadataLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stairway_metadata_lookups_total",
			Help: "Total number of metadata source lookups",
		},
		[]string{"source", "outcome"},
	)

	MetadataLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stairway_metadata_lookup_duration_seconds",
			Help:    "Duration of metadata source lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// MetadataFallbacks counts tracks that ended with the placeholder poster.
	MetadataFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stairway_metadata_fallbacks_total",
			Help: "Total number of tracks enriched with fallback metadata",
		},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stairway_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stairway_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordRecommend records a finished workflow request.
func RecordRecommend(outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordLookup records a metadata source lookup.
func RecordLookup(source, outcome string, duration time.Duration) {
	MetadataLookups.WithLabelValues(source, outcome).Inc()
	MetadataLookupDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFallback records a track that fell back to placeholder metadata.
func RecordFallback() {
	MetadataFallbacks.Inc()
}
