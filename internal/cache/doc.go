// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package cache provides in-memory data structures shared by the recommendation
and messaging layers.

# Components

  - Cache: thread-safe TTL cache with hit/miss statistics. The dispatcher uses
    it to avoid a database read per message for sender names and avatars.
  - SpatialHashGrid: grid index over lat/lon coordinates. The recommendation
    catalog uses it to answer "restaurants within r km, nearest first" without
    scanning every restaurant.

# Spatial Queries

The grid converts the requested radius into a window of cells around the query
point. Longitude cells shrink toward the poles, so the window is widened on the
X axis by 1/cos(lat). Candidates inside the window are then filtered by exact
Haversine distance and returned nearest-first, with equal distances ordered by
ID.

	grid := cache.NewSpatialHashGrid(1.0) // ~1 km cells
	grid.Insert(r.ID, r.Lat, r.Lng, r)
	for _, n := range grid.QueryNearby(37.5, 127.0, 5) {
	    fmt.Println(n.Entry.ID, n.DistanceKm)
	}

# Thread Safety

All types are safe for concurrent use.
*/
package cache
