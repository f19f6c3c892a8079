// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package kv provides the small per-key state store behind connection presence,
send-rate windows and user preference records.

Three backends implement Store:

  - MemoryStore: process-local map with striped per-key locks and lazy TTL expiry
  - RedisStore: shared across processes; Update is WATCH/MULTI/EXEC with retry
  - BadgerStore: persistent; Update is a serializable transaction with retry

Callers only depend on Store, so a single-process deployment and a
multi-process deployment behind redis run the same registry and limiter code.

Update is the primitive that makes check-and-record sequences atomic:

	err := store.Update(ctx, "rate:alice", time.Second, func(old []byte, exists bool) ([]byte, error) {
	    // decode old, decide, return the next value or an error to abort
	})
*/
package kv
