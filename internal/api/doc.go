// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package api provides the HTTP REST API layer for Tablemap.

Handlers are thin: they decode and validate a request, call one service
(recommend.Engine, preference.Store, dispatch.Dispatcher or database.DB)
and wrap the result in the models.APIResponse envelope.

Key Components:

  - Router: chi route table and middleware stack
  - Handler: request handlers, split by area across handlers_*.go
  - requests.go: request bodies with go-playground/validator tags
  - errors.go: mapping of service errors to status codes and error codes

Middleware order on /api/v1:

	RequestIDWithLogging -> RealIP -> Recoverer -> CORS -> SecurityHeaders
	  -> httprate -> PrometheusMetrics -> Authenticate -> AuthorizeRequest

The WebSocket upgrade at /api/v1/ws is mounted outside the authenticated
group because the upgrade handler checks the token itself.

Error Codes:

	VALIDATION_ERROR     400  malformed body, bad query parameter
	MESSAGE_TOO_LONG     400  chat message over the configured limit
	AUTHORIZATION_ERROR  403  not a chat participant or not the recipient
	NOT_FOUND            404
	RATE_LIMIT           429  message send limit or HTTP rate limit
	SERVICE_UNAVAILABLE  503  recommendation breaker open or database down
	TIMEOUT              504
	INTERNAL_ERROR       500

Usage Example:

	handler := api.NewHandler(api.Deps{
	    Recommender: engine,
	    Catalog:     catalog,
	    Preferences: prefs,
	    Messenger:   dispatcher,
	    Store:       db,
	    Connections: hub,
	})
	router := api.NewRouter(handler, authMW, authzMW, api.NewChiMiddlewareFromConfig(&cfg.Security), wsHandler)
	http.ListenAndServe(":8080", router.SetupChi())
*/
package api
