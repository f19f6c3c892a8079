// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/tablemap/internal/auth"
	"github.com/tomtom215/tablemap/internal/middleware"
)

// Authenticator rejects requests without a valid token and stores the
// subject in the request context. Satisfied by *auth.Middleware.
type Authenticator interface {
	Authenticate(next http.Handler) http.Handler
}

// Authorizer checks the authenticated subject against the access policy.
// Satisfied by *authz.Middleware.
type Authorizer interface {
	AuthorizeRequest(next http.Handler) http.Handler
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	authn         Authenticator
	authz         Authorizer
	chiMiddleware *ChiMiddleware
	websocket     http.Handler
}

// NewRouter creates a router. websocket may be nil, in which case the
// upgrade route is not mounted.
func NewRouter(handler *Handler, authn Authenticator, authz Authorizer, chiMW *ChiMiddleware, websocket http.Handler) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authz,
		chiMiddleware: chiMW,
		websocket:     websocket,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(auth.SecurityHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, codeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", nil, nil)
	})

	// ========================
	// Health and Operations
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// ========================
	// WebSocket
	// ========================
	// The upgrade handler authenticates the token itself so browsers can
	// pass it as a query parameter.
	if router.websocket != nil {
		r.With(router.chiMiddleware.RateLimitWebSocket()).Handle("/api/v1/ws", router.websocket)
	}

	// ========================
	// Authenticated API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authn.Authenticate)
		r.Use(router.authz.AuthorizeRequest)

		r.Get("/recommendations", h.Recommendations)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", h.GetPreferences)
			r.Put("/game", h.SetGameWeights)
			r.Put("/context", h.SetContextPreferences)
			r.Post("/visits", h.RecordVisit)
			r.Post("/likes", h.Like)
			r.Post("/follows", h.Follow)
			r.Post("/group-visits", h.RecordGroupVisit)
			r.Post("/blocks", h.Block)
			r.Delete("/blocks/{restaurantID}", h.Unblock)
		})
		r.Put("/users/me", h.UpdateProfile)

		r.Post("/chats", h.CreateChat)
		r.Get("/chats/{chatID}/messages", h.ChatHistory)
		r.Post("/chats/{chatID}/messages", h.SendMessage)
		r.Post("/chats/{chatID}/read", h.MarkChatRead)
		r.Get("/presence/{userID}", h.Presence)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/", h.CreateNotification)
			r.Get("/unread-count", h.UnreadNotificationCount)
			r.Post("/read-all", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/restaurants", h.UpsertRestaurant)
			r.Post("/catalog/refresh", h.RefreshCatalog)
			r.Post("/endorsements", h.UpsertEndorsement)
		})
	})

	return r
}
