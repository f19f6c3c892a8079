// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package dispatch implements chat message and notification delivery.
//
// A Dispatcher persists every message and notification before pushing it,
// so delivery to an offline user is never an error: the record waits in
// storage until the next history or inbox fetch.
//
// Sending a chat message runs these steps in order, stopping at the first
// failure:
//
//  1. Rate check against the per-user sliding window (rate_limit)
//  2. Content validation (message_too_long, generic)
//  3. Participant check (authorization)
//  4. Persist, with the sender pre-marked as having read the message
//  5. Push new_message to the chat room
//
// Every rejection is returned as an *Error and also pushed to the sender's
// own channel as an "error" event.
//
// Presence is tracked through the connection registry. Connect and
// Disconnect broadcast user_online and user_offline to the rooms of every
// chat the user belongs to, but only on an offline/online transition.
package dispatch
