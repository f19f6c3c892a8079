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

// UpsertEndorsement records that a curator vouches for a restaurant.
func (db *DB) UpsertEndorsement(ctx context.Context, e *models.CuratorEndorsement) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("upsert", "curator_endorsements", start, err) }(time.Now())

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO curator_endorsements (curator_id, restaurant_id, curator_type, trust_score)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (curator_id, restaurant_id) DO UPDATE SET
			curator_type = EXCLUDED.curator_type,
			trust_score = EXCLUDED.trust_score`,
		e.CuratorID, e.RestaurantID, string(e.CuratorType), e.TrustScore)
	if err != nil {
		return fmt.Errorf("failed to upsert endorsement %s/%s: %w", e.CuratorID, e.RestaurantID, err)
	}
	return nil
}

// FetchTrustedCurators returns the endorsements of each restaurant in one
// query. Restaurants without endorsements are absent from the map.
func (db *DB) FetchTrustedCurators(ctx context.Context, restaurantIDs []string) (result map[string][]models.CuratorEndorsement, err error) {
	result = make(map[string][]models.CuratorEndorsement)
	if len(restaurantIDs) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "curator_endorsements", start, err) }(time.Now())

	marks, args := placeholders(restaurantIDs)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT curator_id, restaurant_id, curator_type, trust_score
		FROM curator_endorsements
		WHERE restaurant_id IN (`+marks+`)
		ORDER BY restaurant_id, curator_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query endorsements: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var e models.CuratorEndorsement
		var curatorType string
		if err := rows.Scan(&e.CuratorID, &e.RestaurantID, &curatorType, &e.TrustScore); err != nil {
			return nil, fmt.Errorf("failed to scan endorsement: %w", err)
		}
		e.CuratorType = models.CuratorType(curatorType)
		result[e.RestaurantID] = append(result[e.RestaurantID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate endorsements: %w", err)
	}
	return result, nil
}
