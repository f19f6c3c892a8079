// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

// The engine reads its collaborators through these interfaces so that it
// does not depend on the database package. internal/database implements
// all of them.

// PreferenceSource returns a user's preference record.
// It must return an error matching preference.ErrNotFound for unknown users.
type PreferenceSource interface {
	Get(ctx context.Context, userID string) (*models.UserPreference, error)
}

// RestaurantSource lists the full restaurant catalog.
type RestaurantSource interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
}

// CuratorSource returns, per restaurant ID, the curators endorsing it.
type CuratorSource interface {
	FetchTrustedCurators(ctx context.Context, restaurantIDs []string) (map[string][]models.CuratorEndorsement, error)
}

// EngagementSource returns like and visit counts per restaurant for the
// window ending at `at` (Recent) and the window before it (Previous).
// Restaurants without engagement are absent from the map.
type EngagementSource interface {
	EngagementCounts(ctx context.Context, restaurantIDs []string, at time.Time, window time.Duration) (map[string]models.EngagementCounts, error)
}

// LogStore persists recommendation log entries.
type LogStore interface {
	SaveRecommendationLog(ctx context.Context, entry *LogEntry) error
}
