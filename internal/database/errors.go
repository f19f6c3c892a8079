// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package database

import (
	"io"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = models.ErrNotFound

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// Unavailable reports whether err means the database itself is unreachable,
// as opposed to a failed query.
func Unavailable(err error) bool {
	return isConnectionError(err)
}
