// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
carry the tablemap_ prefix. They are exposed at /metrics in Prometheus text
format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendations:
  - tablemap_recommendations_total{path}: personalized or fallback
  - tablemap_recommendation_duration_seconds
  - tablemap_recommendation_log_dropped_total

Messaging:
  - tablemap_messages_sent_total
  - tablemap_message_rejections_total{kind}
  - tablemap_notifications_total{type,delivered}
  - tablemap_ws_connections_active
  - tablemap_push_deliveries_total{result}
  - tablemap_relay_messages_total{direction}

Infrastructure:
  - tablemap_api_requests_total{method,route,status}
  - tablemap_db_query_duration_seconds{operation,table}
  - tablemap_kv_operation_duration_seconds{backend,operation}
  - tablemap_circuit_breaker_state{name}
*/
package metrics
