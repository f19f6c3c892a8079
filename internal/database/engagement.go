// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

// RecordEngagement appends one like or visit event for a restaurant.
func (db *DB) RecordEngagement(ctx context.Context, restaurantID string, kind models.EngagementKind, at time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "engagement_events", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO engagement_events (restaurant_id, kind, occurred_at) VALUES (?, ?, ?)`,
		restaurantID, string(kind), dbTime(at))
	if err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", kind, restaurantID, err)
	}
	return nil
}

// EngagementCounts counts events per restaurant in the window (at-window, at]
// (Recent) and the window before it (Previous). Restaurants with no events in
// either window are absent from the map.
func (db *DB) EngagementCounts(ctx context.Context, restaurantIDs []string, at time.Time, window time.Duration) (result map[string]models.EngagementCounts, err error) {
	result = make(map[string]models.EngagementCounts)
	if len(restaurantIDs) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "engagement_events", start, err) }(time.Now())

	end := dbTime(at)
	mid := end.Add(-window)
	begin := mid.Add(-window)

	marks, idArgs := placeholders(restaurantIDs)
	args := []any{mid, end, begin, mid}
	args = append(args, idArgs...)
	args = append(args, begin, end)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT restaurant_id,
			COUNT(*) FILTER (WHERE occurred_at > ? AND occurred_at <= ?) AS recent,
			COUNT(*) FILTER (WHERE occurred_at > ? AND occurred_at <= ?) AS previous
		FROM engagement_events
		WHERE restaurant_id IN (`+marks+`)
			AND occurred_at > ? AND occurred_at <= ?
		GROUP BY restaurant_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id string
		var recent, previous int64
		if err := rows.Scan(&id, &recent, &previous); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		result[id] = models.EngagementCounts{Recent: int(recent), Previous: int(previous)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagement: %w", err)
	}
	return result, nil
}
