// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"exactlytwelv", "***"},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"1234567890123456", "1234...3456"},
	}

	for _, tt := range tests {
		result := SanitizeToken(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"alice", "***"},
		{"user-123", "***"},
		{"user-12345678", "user...5678"},
	}

	for _, tt := range tests {
		result := SanitizeUserID(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeUserID(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"regular error", "regular error"},
		{"token is expired", "authentication error"},
		{"signature is invalid for secret", "authentication error"},
		{"Bearer header missing", "authentication error"},
		{"authorization failed", "authentication error"},
	}

	for _, tt := range tests {
		result := SanitizeError(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeError(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}

	long := SanitizeError(strings.Repeat("a", 250))
	if len(long) != 203 || !strings.HasSuffix(long, "...") {
		t.Errorf("long error not truncated: len %d", len(long))
	}
}

func TestSecurityLogger_LogEvent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	secLog := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	secLog.LogEvent(&SecurityEvent{
		Event:     "token_accepted",
		UserID:    "user-12345678",
		RequestID: "req-1",
		IPAddress: "192.168.1.1",
		UserAgent: strings.Repeat("b", 150),
		Path:      "/api/v1/recommendations",
		Success:   true,
	})

	output := buf.String()
	for _, want := range []string{`"level":"info"`, "token_accepted", `"status":"success"`, "user...5678", "req-1", "/api/v1/recommendations"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
	if strings.Contains(output, "user-12345678") {
		t.Errorf("raw user ID leaked: %s", output)
	}
	if strings.Contains(output, strings.Repeat("b", 101)) {
		t.Errorf("user agent not truncated: %s", output)
	}
}

func TestSecurityLogger_LogEvent_Failed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	secLog := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	secLog.LogEvent(&SecurityEvent{
		Event:   "token_rejected",
		Success: false,
		Error:   "token is expired",
	})

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":"failed"`, `"error":"authentication error"`, `"component":"auth"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
}

func TestNewSecurityLogger(t *testing.T) {
	t.Parallel()

	if NewSecurityLogger() == nil {
		t.Error("expected non-nil security logger")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is a ..."},
	}

	for _, tt := range tests {
		result := truncateString(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
