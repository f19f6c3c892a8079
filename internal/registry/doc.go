// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package registry tracks which channel each connected user is reachable on.

The mapping is bidirectional and lives in a kv.Store:

	conn:user:<userID>    -> channelID
	conn:chan:<channelID> -> userID

A user has at most one live channel. Register overwrites the user key in a
single atomic update, so a reconnect supersedes the earlier socket; Unregister
compares before deleting, so a late close of the superseded socket is a no-op.

With a shared redis store several server processes see the same registry.
Entries carry a presence TTL that the websocket hub refreshes with Touch on
every ping, so mappings owned by a crashed process expire on their own.
*/
package registry
