// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package preference stores the per-user preference record that drives
// personalized recommendations.
//
// Records live in a kv.Store under "pref:<userID>" as JSON. The default
// deployment uses the badger backend so preferences survive restarts; the
// redis backend shares them across nodes.
package preference
