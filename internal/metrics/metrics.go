// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
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
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Access Guard Metrics
	ShareTokenChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_token_checks_total",
			Help: "Total number of share token verifications",
		},
		[]string{"result"}, // "allowed", "denied"
	)

	// Query Pipeline Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_queries_total",
			Help: "Total number of explore queries by outcome",
		},
		[]string{"dataset", "outcome"}, // outcome: "ok", "rejected", "failed"
	)

	QueryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explore_query_rejections_total",
			Help: "Total number of queries rejected by validation, by error kind",
		},
		[]string{"kind"},
	)

	QueryRowsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explore_query_rows",
			Help:    "Number of rows returned per query",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"dataset"},
	)

	// Execution Engine Metrics
	EngineExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_execution_duration_seconds",
			Help:    "Duration of compiled query execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine", "dataset"},
	)

	EngineExecutionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_execution_errors_total",
			Help: "Total number of failed query executions",
		},
		[]string{"engine", "dataset"},
	)

	EngineThrottleWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_throttle_wait_seconds",
			Help:    "Time spent waiting for an execution slot from the engine rate limiter",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// Warehouse Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_query_errors_total",
			Help: "Total number of warehouse query errors",
		},
		[]string{"driver", "operation", "error_type"},
	)

	WarehouseUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warehouse_up",
			Help: "Whether the last warehouse ping succeeded (1) or failed (0)",
		},
		[]string{"driver"},
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
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordShareTokenCheck records the outcome of an access guard verification.
func RecordShareTokenCheck(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	ShareTokenChecks.WithLabelValues(result).Inc()
}

// RecordQuery records the outcome of one explore query. rows is ignored
// unless outcome is "ok".
func RecordQuery(dataset, outcome string, rows int) {
	QueriesTotal.WithLabelValues(dataset, outcome).Inc()
	if outcome == "ok" {
		QueryRowsReturned.WithLabelValues(dataset).Observe(float64(rows))
	}
}

// RecordQueryRejection records a validation failure by error kind.
func RecordQueryRejection(kind string) {
	QueryRejections.WithLabelValues(kind).Inc()
}

// RecordExecution records an engine execution metric
func RecordExecution(engine, dataset string, duration time.Duration, err error) {
	EngineExecutionDuration.WithLabelValues(engine, dataset).Observe(duration.Seconds())
	if err != nil {
		EngineExecutionErrors.WithLabelValues(engine, dataset).Inc()
	}
}

// RecordThrottleWait records how long an execution waited for the engine limiter.
func RecordThrottleWait(d time.Duration) {
	EngineThrottleWait.Observe(d.Seconds())
}

// RecordDBQuery records a warehouse query metric
func RecordDBQuery(driver, operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(driver, operation, errorType).Inc()
	}
}

// RecordWarehousePing records the result of a warehouse liveness ping.
func RecordWarehousePing(driver string, duration time.Duration, err error) {
	RecordDBQuery(driver, "ping", duration, err)
	up := 1.0
	if err != nil {
		up = 0
	}
	WarehouseUp.WithLabelValues(driver).Set(up)
}
