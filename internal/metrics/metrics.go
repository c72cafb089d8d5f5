// Package metrics exposes Prometheus instrumentation for the positioning service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoors_ingest_total",
			Help: "Fingerprint uploads by outcome (merged, appended, rejected, failed)",
		},
		[]string{"outcome"},
	)

	EstimateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoors_estimate_total",
			Help: "Position estimates by result (ok, no_candidates, room_not_found, failed)",
		},
		[]string{"result"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indoors_store_operation_duration_seconds",
			Help:    "Duration of room store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoors_store_errors_total",
			Help: "Room store operations that failed",
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "indoors_room_cache_hits_total",
			Help: "Room documents served from the cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "indoors_room_cache_misses_total",
			Help: "Room lookups that missed the cache",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indoors_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveStoreOperation records the duration of a store call and counts it as
// failed when err is non-nil.
func ObserveStoreOperation(operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
