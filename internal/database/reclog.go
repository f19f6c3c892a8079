// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/recommend"
)

// SaveRecommendationLog persists one served recommendation list.
func (db *DB) SaveRecommendationLog(ctx context.Context, entry *recommend.LogEntry) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "recommendation_logs", start, err) }(time.Now())

	rc, err := encodeJSON(entry.Context)
	if err != nil {
		return fmt.Errorf("failed to encode log context: %w", err)
	}
	results, err := encodeJSON(entry.Results)
	if err != nil {
		return fmt.Errorf("failed to encode log results: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO recommendation_logs (id, user_id, fallback, context, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Fallback, rc, results, dbTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save recommendation log %s: %w", entry.ID, err)
	}
	return nil
}

