// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package cache

import (
	"math"
	"sort"
	"sync"
)

// kmPerDegree is the approximate length of one degree of latitude.
const kmPerDegree = 111.0

// SpatialHashGrid divides geographic space into cells for fast proximity queries.
// Instead of O(n) comparisons to find nearby entries, only cells around the
// query point are checked.
//
// Time Complexity:
//   - Insert: O(1)
//   - Query nearby: O(k log k) where k = entries in nearby cells
//   - Remove: O(cell size)
type SpatialHashGrid struct {
	mu       sync.RWMutex
	cells    map[CellKey]*Cell        // Grid cells containing entries
	cellSize float64                  // Cell size in degrees
	entries  map[string]*SpatialEntry // Index by ID for fast lookup/removal
}

// CellKey represents a grid cell coordinate.
type CellKey struct {
	X, Y int
}

// Cell contains all entries in a grid cell.
type Cell struct {
	entries []*SpatialEntry
}

// SpatialEntry represents an entry in the spatial grid.
type SpatialEntry struct {
	ID      string
	Lat     float64
	Lon     float64
	Data    any
	cellKey CellKey // Cached cell key for fast removal
}

// Neighbor is a query result with its distance from the query point.
type Neighbor struct {
	Entry      SpatialEntry
	DistanceKm float64
}

// NewSpatialHashGrid creates a new spatial hash grid.
// cellSizeKm specifies the approximate cell size in kilometers; it should be
// on the order of the typical query radius.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 1
	}

	return &SpatialHashGrid{
		cells:    make(map[CellKey]*Cell),
		cellSize: cellSizeKm / kmPerDegree,
		entries:  make(map[string]*SpatialEntry),
	}
}

// getCellKey returns the cell key for a lat/lon coordinate.
func (g *SpatialHashGrid) getCellKey(lat, lon float64) CellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}

	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds an entry to the grid.
// If an entry with the same ID exists, it's replaced.
func (g *SpatialHashGrid) Insert(id string, lat, lon float64, data any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellUnlocked(existing)
	}

	cellKey := g.getCellKey(lat, lon)
	entry := &SpatialEntry{
		ID:      id,
		Lat:     lat,
		Lon:     lon,
		Data:    data,
		cellKey: cellKey,
	}

	cell, exists := g.cells[cellKey]
	if !exists {
		cell = &Cell{entries: make([]*SpatialEntry, 0, 4)}
		g.cells[cellKey] = cell
	}
	cell.entries = append(cell.entries, entry)
	g.entries[id] = entry
}

// Remove removes an entry by ID.
func (g *SpatialHashGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, exists := g.entries[id]
	if !exists {
		return false
	}

	g.removeFromCellUnlocked(entry)
	delete(g.entries, id)
	return true
}

// removeFromCellUnlocked removes an entry from its cell (caller must hold lock).
func (g *SpatialHashGrid) removeFromCellUnlocked(entry *SpatialEntry) {
	cell, exists := g.cells[entry.cellKey]
	if !exists {
		return
	}

	for i, e := range cell.entries {
		if e.ID == entry.ID {
			cell.entries[i] = cell.entries[len(cell.entries)-1]
			cell.entries = cell.entries[:len(cell.entries)-1]
			break
		}
	}

	if len(cell.entries) == 0 {
		delete(g.cells, entry.cellKey)
	}
}

// Get returns a copy of an entry by ID.
func (g *SpatialHashGrid) Get(id string) (SpatialEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, exists := g.entries[id]
	if !exists {
		return SpatialEntry{}, false
	}
	return *entry, true
}

// QueryNearby returns all entries within radiusKm of the point, nearest first.
// Equal distances are ordered by ID so results are deterministic.
func (g *SpatialHashGrid) QueryNearby(lat, lon, radiusKm float64) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// A degree of longitude shrinks with latitude; widen the X search to match
	cellsY := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	cellsX := cellsY
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		cellsX = int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/g.cellSize)) + 1
	}
	center := g.getCellKey(lat, lon)

	var results []Neighbor
	for dx := -cellsX; dx <= cellsX; dx++ {
		for dy := -cellsY; dy <= cellsY; dy++ {
			cell, exists := g.cells[CellKey{X: center.X + dx, Y: center.Y + dy}]
			if !exists {
				continue
			}
			for _, entry := range cell.entries {
				if dist := Haversine(lat, lon, entry.Lat, entry.Lon); dist <= radiusKm {
					results = append(results, Neighbor{Entry: *entry, DistanceKm: dist})
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})
	return results
}

// Size returns the total number of entries.
func (g *SpatialHashGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// NumCells returns the number of non-empty cells.
func (g *SpatialHashGrid) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes all entries.
func (g *SpatialHashGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cells = make(map[CellKey]*Cell)
	g.entries = make(map[string]*SpatialEntry)
}

// Haversine calculates the great-circle distance between two lat/lon points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
