// Package metrics exposes Prometheus metrics for codec operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the metrics for the encryption service
type Metrics struct {
	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	BytesProcessed    *prometheus.CounterVec

	// Negotiation metrics
	FallbacksTotal *prometheus.CounterVec

	// Key cache metrics
	KeyCacheHits   prometheus.Counter
	KeyCacheMisses prometheus.Counter

	// Rate limiting metrics
	UnwrapThrottledTotal prometheus.Counter
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "seamless_encryptor"
	}

	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of codec operations",
			},
			[]string{"operation", "algorithm", "status"},
		),

		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Codec operation duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~6.5s
			},
			[]string{"operation", "algorithm"},
		),

		BytesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_processed_total",
				Help:      "Total plaintext and ciphertext bytes processed",
			},
			[]string{"operation"},
		),

		FallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "algorithm_fallbacks_total",
				Help:      "Total number of encode-time algorithm substitutions",
			},
			[]string{"requested"},
		),

		KeyCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "derived_key_cache_hits_total",
				Help:      "Total number of derived-key cache hits",
			},
		),

		KeyCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "derived_key_cache_misses_total",
				Help:      "Total number of derived-key cache misses",
			},
		),

		UnwrapThrottledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unwrap_throttled_total",
				Help:      "Total number of throttled key-unwrap attempts",
			},
		),
	}
}

// RecordOperation records one codec operation outcome with its duration
// and byte volume.
func (m *Metrics) RecordOperation(operation, algorithm string, start time.Time, bytes int, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, algorithm, status).Inc()
	m.OperationDuration.WithLabelValues(operation, algorithm).Observe(time.Since(start).Seconds())
	if bytes > 0 {
		m.BytesProcessed.WithLabelValues(operation).Add(float64(bytes))
	}
}

// RecordFallback records an encode-time algorithm substitution.
func (m *Metrics) RecordFallback(requested string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(requested).Inc()
}

// RecordKeyCache records a derived-key cache lookup outcome.
func (m *Metrics) RecordKeyCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.KeyCacheHits.Inc()
	} else {
		m.KeyCacheMisses.Inc()
	}
}

// RecordUnwrapThrottled records a rejected key-unwrap attempt.
func (m *Metrics) RecordUnwrapThrottled() {
	if m == nil {
		return
	}
	m.UnwrapThrottledTotal.Inc()
}
