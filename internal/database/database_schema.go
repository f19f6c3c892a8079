// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
database_schema.go - Database Schema Management

Tables:
  - users: Display names and avatars for message and notification senders
  - restaurants: The catalog; list-valued attributes are JSON text columns
  - curator_endorsements: Which curators vouch for which restaurants
  - engagement_events: One row per like or visit, feeding the trending signal
  - chats, chat_participants: Conversations and their members
  - messages, message_reads: Chat messages and per-reader read receipts
  - notifications: Per-recipient notification inbox
  - recommendation_logs: Served recommendation lists for offline analysis

All timestamps are stored as UTC TIMESTAMP (microsecond precision).
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			profile_image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS restaurants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			price_range TEXT NOT NULL,
			atmosphere TEXT NOT NULL DEFAULT '[]',
			tags TEXT NOT NULL DEFAULT '[]',
			lat DOUBLE NOT NULL DEFAULT 0,
			lng DOUBLE NOT NULL DEFAULT 0,
			address TEXT NOT NULL DEFAULT '',
			signature_dishes TEXT NOT NULL DEFAULT '[]',
			spicy_level INTEGER NOT NULL DEFAULT 0,
			hours TEXT,
			popular_times TEXT NOT NULL DEFAULT '{}',
			average_rating DOUBLE NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS curator_endorsements (
			curator_id TEXT NOT NULL,
			restaurant_id TEXT NOT NULL,
			curator_type TEXT NOT NULL,
			trust_score DOUBLE NOT NULL,
			PRIMARY KEY (curator_id, restaurant_id)
		)`,

		`CREATE TABLE IF NOT EXISTS engagement_events (
			restaurant_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS chat_participants (
			chat_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (chat_id, user_id)
		)`,

		// seq orders messages created within the same microsecond
		`CREATE SEQUENCE IF NOT EXISTS message_seq START 1`,

		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL DEFAULT nextval('message_seq'),
			chat_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			restaurant_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS message_reads (
			message_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			read_at TIMESTAMP NOT NULL,
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			sender_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			related_id TEXT NOT NULL DEFAULT '',
			related_type TEXT NOT NULL DEFAULT '',
			is_read BOOLEAN NOT NULL DEFAULT false,
			read_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			fallback BOOLEAN NOT NULL,
			context TEXT NOT NULL,
			results TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates secondary indexes for the common lookups
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

// Indexes cover only columns that are never updated; DuckDB rewrites an
// updated row as delete+insert and rejects that against some ART indexes.
func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_engagement_restaurant_time ON engagement_events(restaurant_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_time ON messages(chat_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_message_reads_user ON message_reads(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_logs_user ON recommendation_logs(user_id, created_at)`,
	}
}
