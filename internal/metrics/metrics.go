// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors. The in-memory Recorder feeds the upstream and
// cache collectors; the rest are updated directly by their owners.

var (
	// Upstream fetch metrics
	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_seconds",
			Help:    "Duration of upstream fetch attempts in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"name"},
	)

	UpstreamFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetch_total",
			Help: "Total upstream fetch attempts by outcome",
		},
		[]string{"name", "outcome"}, // success, failure, timeout
	)

	// Cache metrics
	CacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_events_total",
			Help: "Total in-process cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	CacheBackgroundRefresh = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_background_refresh_total",
			Help: "Total detached refreshes of stale cache entries",
		},
		[]string{"outcome"}, // success, failure, deduplicated
	)

	// CacheEntries is the sum over every cache.Service in the process; each
	// instance adds and removes only its own entries.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of entries across all in-process caches",
		},
	)

	// Bounded concurrency runner
	ConcurrencyTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concurrency_tasks_total",
			Help: "Total runner tasks by outcome",
		},
		[]string{"outcome"}, // success, failure, skipped
	)

	// Durable summary store
	SummaryStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_store_operations_total",
			Help: "Total durable summary store operations",
		},
		[]string{"domain", "operation", "outcome"}, // outcome: hit, miss, stale, error, ok
	)

	// Domain controllers
	ControllerResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_responses_total",
			Help: "Domain controller responses by the tier that produced them",
		},
		[]string{"domain", "source"}, // live, durable, fallback
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)
)

// recordUpstreamFetch mirrors a Recorder fetch sample.
func recordUpstreamFetch(name string, duration time.Duration, success, timeout bool) {
	UpstreamFetchDuration.WithLabelValues(name).Observe(duration.Seconds())
	outcome := "success"
	switch {
	case timeout:
		outcome = "timeout"
	case !success:
		outcome = "failure"
	}
	UpstreamFetchTotal.WithLabelValues(name, outcome).Inc()
}

// recordCacheEvent mirrors a Recorder cache sample. The key is not a label;
// parameterised keys would make the series unbounded.
func recordCacheEvent(hit bool) {
	if hit {
		CacheEvents.WithLabelValues("hit").Inc()
		return
	}
	CacheEvents.WithLabelValues("miss").Inc()
}

// RecordBackgroundRefresh counts one detached refresh outcome.
func RecordBackgroundRefresh(outcome string) {
	CacheBackgroundRefresh.WithLabelValues(outcome).Inc()
}

// RecordTask counts one runner task outcome.
func RecordTask(outcome string) {
	ConcurrencyTasks.WithLabelValues(outcome).Inc()
}

// RecordSummaryOperation counts one durable store operation.
func RecordSummaryOperation(domain, operation, outcome string) {
	SummaryStoreOperations.WithLabelValues(domain, operation, outcome).Inc()
}

// RecordControllerResponse counts which fallback tier served a request.
func RecordControllerResponse(domain, source string) {
	ControllerResponses.WithLabelValues(domain, source).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
