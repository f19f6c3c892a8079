// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
	"github.com/tomtom215/tablemap/internal/recommend"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "wrapped rate limit keeps its message",
			err:        fmt.Errorf("send: %w", &dispatch.Error{Kind: dispatch.KindRateLimit, Message: "10 messages per minute"}),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   codeRateLimit,
			wantMsg:    "10 messages per minute",
		},
		{
			name:       "message too long",
			err:        &dispatch.Error{Kind: dispatch.KindMessageTooLong, Message: "message is 1200 characters, limit is 1000"},
			wantStatus: http.StatusBadRequest,
			wantCode:   codeMessageTooLong,
			wantMsg:    "message is 1200 characters, limit is 1000",
		},
		{
			name:       "model not found",
			err:        fmt.Errorf("load notification: %w", models.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   codeNotFound,
			wantMsg:    "Resource not found",
		},
		{
			name:       "preference not found",
			err:        preference.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   codeNotFound,
			wantMsg:    "Resource not found",
		},
		{
			name:       "invalid context",
			err:        fmt.Errorf("%w: latitude 91 out of range", recommend.ErrInvalidContext),
			wantStatus: http.StatusBadRequest,
			wantCode:   codeValidation,
		},
		{
			name:       "too many half-open requests",
			err:        gobreaker.ErrTooManyRequests,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   codeUnavailable,
			wantMsg:    "Service temporarily unavailable",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("score: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   codeTimeout,
		},
		{
			name:       "internal hides detail",
			err:        errors.New("duckdb: constraint violated on users"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   codeInternal,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, code, msg := statusFor(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
