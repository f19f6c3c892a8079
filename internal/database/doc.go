// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package database is the DuckDB persistence layer for Tablemap.
//
// # Overview
//
// DB owns a database/sql pool over github.com/duckdb/duckdb-go/v2 and
// implements the collaborator interfaces of the recommend and dispatch
// packages, so neither of them imports DuckDB:
//
// Recommendation Sources:
//   - restaurants.go: ListRestaurants (catalog load), GetRestaurant, UpsertRestaurant
//   - curators.go: FetchTrustedCurators in a single batched query
//   - engagement.go: RecordEngagement and two-window EngagementCounts for trending
//   - reclog.go: SaveRecommendationLog for the asynchronous log writer
//
// Messaging Stores:
//   - chats.go: CreateChat, GetChat, ChatsForUser
//   - messages.go: CreateMessage, History, UnreadMessageIDs, MarkMessagesRead
//   - notifications.go: inbox listing, unread counts and idempotent mark-read
//   - users.go: GetUser, UpsertUser
//
// Core:
//   - database.go: lifecycle (open, schema, checkpoint-on-close)
//   - database_schema.go: CREATE TABLE IF NOT EXISTS statements and indexes
//   - database_connection.go: pool settings and conflict-retrying transactions
//   - database_utils.go: profiling, default timeouts, JSON column helpers
//
// # Timestamps
//
// Every timestamp is written as UTC truncated to microseconds, which is
// the precision of a DuckDB TIMESTAMP, so a value read back compares equal
// to the value the caller holds after the write.
//
// # Errors
//
// Lookups of a missing row return an error wrapping ErrNotFound, which is
// models.ErrNotFound. Every query records its latency and failures in the
// tablemap_db_query_* prometheus metrics.
package database
