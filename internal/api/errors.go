// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tablemap/internal/database"
	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
	"github.com/tomtom215/tablemap/internal/recommend"
)

// Error codes for API responses
const (
	codeValidation       = "VALIDATION_ERROR"
	codeMessageTooLong   = "MESSAGE_TOO_LONG"
	codeRateLimit        = "RATE_LIMIT"
	codeAuthorization    = "AUTHORIZATION_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeUnavailable      = "SERVICE_UNAVAILABLE"
	codeTimeout          = "TIMEOUT"
	codeInternal         = "INTERNAL_ERROR"
)

// statusFor maps a service error to an HTTP status, an error code and a
// client-safe message. Only caller errors expose their own message.
func statusFor(err error) (status int, code, message string) {
	var de *dispatch.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case dispatch.KindRateLimit:
			return http.StatusTooManyRequests, codeRateLimit, de.Message
		case dispatch.KindMessageTooLong:
			return http.StatusBadRequest, codeMessageTooLong, de.Message
		case dispatch.KindAuthorization:
			return http.StatusForbidden, codeAuthorization, de.Message
		default:
			return http.StatusBadRequest, codeValidation, de.Message
		}
	}

	switch {
	case errors.Is(err, recommend.ErrInvalidContext):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, models.ErrNotFound), errors.Is(err, preference.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "Resource not found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests), database.Unavailable(err):
		return http.StatusServiceUnavailable, codeUnavailable, "Service temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, codeInternal, "Internal server error"
	}
}

// writeServiceError responds with the mapping of statusFor. Server-side
// failures are logged with the request ID.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)
	var logged error
	if status >= http.StatusInternalServerError {
		logged = err
	}
	respondError(w, r, status, code, message, nil, logged)
}
