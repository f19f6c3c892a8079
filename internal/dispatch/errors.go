// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"errors"

	"github.com/tomtom215/tablemap/internal/models"
)

// ErrNotFound is returned when a notification or chat does not exist.
var ErrNotFound = models.ErrNotFound

// Kind classifies a rejected request. The values are the "type" field of
// the error event sent to clients.
type Kind string

const (
	KindRateLimit      Kind = "rate_limit"
	KindMessageTooLong Kind = "message_too_long"
	KindAuthorization  Kind = "authorization"
	KindGeneric        Kind = "generic"
)

// Error is a rejection the caller caused and can act on.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
