// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import "errors"

// ErrNotFound is returned by stores when a requested record does not exist.
// Packages re-export it so callers can match with errors.Is without
// importing the storage layer.
var ErrNotFound = errors.New("not found")
