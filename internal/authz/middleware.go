// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package authz

import (
	"net/http"

	"github.com/tomtom215/tablemap/internal/auth"
	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	secLog   *logging.SecurityLogger
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		secLog:   logging.NewSecurityLogger(),
	}
}

// AuthorizeRequest is chi middleware that derives the action from the HTTP
// method and authorizes the request path. It must run after
// auth.Middleware.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := auth.GetAuthSubject(r.Context())
		if subject == nil {
			http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, r.URL.Path, action)
		if err != nil {
			logging.Error().Err(err).Str("path", r.URL.Path).Msg("Authorization error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !allowed {
			metrics.AuthzDecisions.WithLabelValues("deny").Inc()
			m.secLog.LogEvent(&logging.SecurityEvent{
				Event:     "access_denied",
				UserID:    subject.ID,
				RequestID: logging.RequestIDFromContext(r.Context()),
				Path:      r.URL.Path,
				Error:     action + " not permitted",
			})
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		metrics.AuthzDecisions.WithLabelValues("allow").Inc()
		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
