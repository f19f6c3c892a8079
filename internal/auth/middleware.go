// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package auth

import (
	"net/http"
	"strings"

	"github.com/tomtom215/tablemap/internal/logging"
)

// Middleware authenticates requests and grants configured roles.
type Middleware struct {
	jwtManager *JWTManager
	admins     map[string]struct{}
	secLog     *logging.SecurityLogger
}

// NewMiddleware creates the authentication middleware. adminUsers are user
// IDs that receive RoleAdmin in addition to RoleUser.
func NewMiddleware(jwtManager *JWTManager, adminUsers []string) *Middleware {
	admins := make(map[string]struct{}, len(adminUsers))
	for _, id := range adminUsers {
		if id != "" {
			admins[id] = struct{}{}
		}
	}
	return &Middleware{
		jwtManager: jwtManager,
		admins:     admins,
		secLog:     logging.NewSecurityLogger(),
	}
}

// Authenticate is chi middleware that rejects requests without a valid
// token and stores the subject in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.jwtManager.Authenticate(r)
		outcome := outcomeOf(err)
		RecordAuthAttempt(outcome)
		if err != nil {
			if outcome != OutcomeMissing {
				m.secLog.LogEvent(&logging.SecurityEvent{
					Event:     "token_rejected",
					RequestID: logging.RequestIDFromContext(r.Context()),
					IPAddress: r.RemoteAddr,
					UserAgent: r.UserAgent(),
					Path:      r.URL.Path,
					Error:     err.Error(),
				})
			}
			unauthorized(w, outcome)
			return
		}

		m.grantRoles(subject)
		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateRequest returns the user ID of r for WebSocket upgrades.
// Rejections are counted and logged like Authenticate.
func (m *Middleware) AuthenticateRequest(r *http.Request) (string, error) {
	userID, err := m.jwtManager.AuthenticateRequest(r)
	outcome := outcomeOf(err)
	RecordAuthAttempt(outcome)
	if err != nil && outcome != OutcomeMissing {
		m.secLog.LogEvent(&logging.SecurityEvent{
			Event:     "upgrade_rejected",
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
			Path:      r.URL.Path,
			Error:     err.Error(),
		})
	}
	return userID, err
}

func (m *Middleware) grantRoles(subject *AuthSubject) {
	if _, ok := m.admins[subject.ID]; ok && !subject.HasRole(RoleAdmin) {
		subject.Roles = append(subject.Roles, RoleAdmin)
	}
}

// IsAdmin reports whether userID is configured as an admin.
func (m *Middleware) IsAdmin(userID string) bool {
	_, ok := m.admins[userID]
	return ok
}

// RequireRole returns middleware that refuses subjects without role.
// It must run after Authenticate.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetAuthSubject(r.Context())
			if subject == nil {
				unauthorized(w, OutcomeMissing)
				return
			}
			if !subject.HasRole(role) {
				AuthForbidden.WithLabelValues(role).Inc()
				m.secLog.LogEvent(&logging.SecurityEvent{
					Event:     "role_required",
					UserID:    subject.ID,
					RequestID: logging.RequestIDFromContext(r.Context()),
					Path:      r.URL.Path,
					Error:     "missing role " + role,
				})
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	apiCSP     = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"
)

// SecurityHeaders adds security headers to all responses. Only the Swagger
// UI under /swagger/ may load scripts.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			h.Set("Content-Security-Policy", swaggerCSP)
		} else {
			h.Set("Content-Security-Policy", apiCSP)
		}
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		h.Set("Permissions-Policy", "geolocation=(self), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, outcome string) {
	challenge := `Bearer realm="tablemap"`
	if outcome != OutcomeMissing {
		challenge += `, error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "Unauthorized: "+outcome+" token", http.StatusUnauthorized)
}
