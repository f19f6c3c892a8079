// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package middleware provides HTTP instrumentation middleware.

PrometheusMetrics records tablemap_api_requests_total and
tablemap_api_request_duration_seconds per method, chi route pattern and
status, and tracks in-flight requests. The route pattern
("/api/v1/chats/{chatID}/messages") is used instead of the raw path so
chat and notification IDs do not create unbounded label values.

Usage Example:

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/recommendations", h.GetRecommendations)
	})

Requests that match no route are recorded under the "unmatched" route.
*/
package middleware
