// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablemap_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Key-value store metrics
	KVOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablemap_kv_operation_duration_seconds",
			Help:    "Duration of key-value store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)

	KVUpdateConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_kv_update_conflicts_total",
			Help: "Total number of optimistic update retries caused by concurrent writers",
		},
		[]string{"backend"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablemap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablemap_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_api_rate_limit_hits_total",
			Help: "Total number of per-IP rate limit rejections",
		},
		[]string{"route"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_recommendations_total",
			Help: "Total number of recommendation requests served",
		},
		[]string{"path"}, // personalized, fallback
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablemap_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablemap_recommendation_candidates",
			Help:    "Number of candidates scored per request",
			Buckets: []float64{0, 5, 10, 25, 50, 100},
		},
	)

	RecommendationLogDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablemap_recommendation_log_dropped_total",
			Help: "Recommendation log entries dropped because the buffer was full",
		},
	)

	CatalogRestaurants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablemap_catalog_restaurants",
			Help: "Number of restaurants in the in-memory candidate catalog",
		},
	)

	// Messaging Metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablemap_messages_sent_total",
			Help: "Total number of chat messages persisted",
		},
	)

	MessageRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_message_rejections_total",
			Help: "Total number of rejected chat messages",
		},
		[]string{"kind"}, // rate_limit, message_too_long, authorization, generic, dependency
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_notifications_total",
			Help: "Total number of notifications created",
		},
		[]string{"type", "delivered"},
	)

	ReadReceiptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablemap_read_receipts_total",
			Help: "Total number of message read receipts recorded",
		},
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablemap_ws_connections_active",
			Help: "Current number of live WebSocket connections on this node",
		},
	)

	WSFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_ws_frames_received_total",
			Help: "Total number of inbound WebSocket frames",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_ws_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	PushDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_push_deliveries_total",
			Help: "Total number of push delivery attempts",
		},
		[]string{"result"}, // delivered, offline, dropped, relayed
	)

	RelayMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_relay_messages_total",
			Help: "Total number of push envelopes crossing the fan-out relay",
		},
		[]string{"direction"}, // published, received, ignored
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tablemap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Authorization Metrics
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"decision"}, // allow, deny
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordKVOperation records a key-value store operation
func RecordKVOperation(backend, operation string, duration time.Duration) {
	KVOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one served recommendation request.
func RecordRecommendation(fallback bool, candidates int, duration time.Duration) {
	path := "personalized"
	if fallback {
		path = "fallback"
	}
	RecommendationsTotal.WithLabelValues(path).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationCandidates.Observe(float64(candidates))
}

// RecordNotification records a created notification and whether a live push reached the user.
func RecordNotification(notificationType string, delivered bool) {
	label := "false"
	if delivered {
		label = "true"
	}
	NotificationsTotal.WithLabelValues(notificationType, label).Inc()
}

// RecordCircuitBreakerTransition updates breaker state gauges on a state change.
// States use the gobreaker string names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
