// Package observability provides domain metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsResolved counts moderation decisions by content kind and outcome.
	SubmissionsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_submissions_resolved_total",
		Help: "Total number of resolved submissions",
	}, []string{"kind", "status"})

	// ContentCreated counts content items accepted for moderation.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_content_created_total",
		Help: "Total number of created content items",
	}, []string{"kind"})

	// Interactions counts interaction counter increments.
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_interactions_total",
		Help: "Total number of recorded interactions",
	}, []string{"kind", "field"})

	// MediaUploads counts stored objects by outcome.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_media_uploads_total",
		Help: "Total number of media uploads",
	}, []string{"outcome"})

	// FeaturedCache counts featured lookups served from cache or database.
	FeaturedCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_featured_cache_total",
		Help: "Featured list lookups by cache result",
	}, []string{"kind", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// SlowQueries counts statements slower than the gorm logger threshold.
	SlowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devhub_database_slow_queries_total",
		Help: "Database statements slower than the slow query threshold",
	})
)

// Upload outcomes.
const (
	UploadStored     = "stored"
	UploadRolledBack = "rolled_back"
	UploadFailed     = "failed"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
