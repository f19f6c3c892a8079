// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/tablemap/internal/cache"
	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
	"github.com/tomtom215/tablemap/internal/models"
)

// catalogCellKm is the spatial grid cell size. It is on the order of the
// candidate radius so a query touches a handful of cells.
const catalogCellKm = 1.0

// Catalog is the in-memory restaurant index used for candidate selection.
//
// Restaurants are kept in ascending ID order for location-less requests and
// in a spatial grid for radius queries. Refresh swaps both atomically.
type Catalog struct {
	source RestaurantSource

	mu       sync.RWMutex
	byID     map[string]*models.Restaurant
	ordered  []*models.Restaurant
	grid     *cache.SpatialHashGrid
	loadedAt time.Time
}

// NewCatalog creates an empty catalog backed by source.
func NewCatalog(source RestaurantSource) *Catalog {
	return &Catalog{
		source: source,
		byID:   make(map[string]*models.Restaurant),
		grid:   cache.NewSpatialHashGrid(catalogCellKm),
	}
}

// Refresh reloads every restaurant from the source.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("catalog: no restaurant source")
	}
	start := time.Now()
	restaurants, err := c.source.ListRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("catalog refresh: %w", err)
	}
	c.Replace(restaurants)

	logging.Debug().
		Int("restaurants", len(restaurants)).
		Dur("duration", time.Since(start)).
		Msg("Catalog refreshed")
	return nil
}

// Replace swaps the catalog contents for restaurants.
func (c *Catalog) Replace(restaurants []models.Restaurant) {
	byID := make(map[string]*models.Restaurant, len(restaurants))
	grid := cache.NewSpatialHashGrid(catalogCellKm)
	for i := range restaurants {
		r := restaurants[i]
		byID[r.ID] = &r
		if r.HasLocation() {
			grid.Insert(r.ID, r.Lat, r.Lng, &r)
		}
	}
	ordered := sortedByID(byID)

	c.mu.Lock()
	c.byID = byID
	c.ordered = ordered
	c.grid = grid
	c.loadedAt = time.Now()
	c.mu.Unlock()

	metrics.CatalogRestaurants.Set(float64(len(ordered)))
}

// Upsert adds or replaces a single restaurant.
func (c *Catalog) Upsert(r models.Restaurant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := &r
	c.byID[r.ID] = stored
	if r.HasLocation() {
		c.grid.Insert(r.ID, r.Lat, r.Lng, stored)
	} else {
		c.grid.Remove(r.ID)
	}
	c.ordered = sortedByID(c.byID)

	metrics.CatalogRestaurants.Set(float64(len(c.ordered)))
}

// Get returns a restaurant by ID.
func (c *Catalog) Get(id string) (*models.Restaurant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	return r, ok
}

// All returns every restaurant in ascending ID order.
func (c *Catalog) All() []*models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*models.Restaurant(nil), c.ordered...)
}

// Nearby returns restaurants within radiusKm of loc, nearest first.
// Equal distances are ordered by ID.
func (c *Catalog) Nearby(loc Location, radiusKm float64) []Candidate {
	c.mu.RLock()
	grid := c.grid
	c.mu.RUnlock()

	neighbors := grid.QueryNearby(loc.Lat, loc.Lng, radiusKm)
	out := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		r, ok := n.Entry.Data.(*models.Restaurant)
		if !ok {
			continue
		}
		out = append(out, Candidate{Restaurant: r, DistanceKm: n.DistanceKm})
	}
	return out
}

// Len returns the number of restaurants.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ordered)
}

// LoadedAt returns when the catalog was last replaced.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func sortedByID(byID map[string]*models.Restaurant) []*models.Restaurant {
	ordered := make([]*models.Restaurant, 0, len(byID))
	for _, r := range byID {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return ordered
}
