// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package cache

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestSpatialHashGrid_BasicOperations(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(1)
	grid.Insert("gangnam", 37.4979, 127.0276, "data1")
	grid.Insert("hongdae", 37.5563, 126.9236, "data2")

	if grid.Size() != 2 {
		t.Errorf("Size() = %d, want 2", grid.Size())
	}

	entry, ok := grid.Get("gangnam")
	if !ok {
		t.Fatal("Get() returned false for existing entry")
	}
	if entry.Data != "data1" {
		t.Errorf("Data = %v, want data1", entry.Data)
	}

	// Re-insert replaces
	grid.Insert("gangnam", 37.5, 127.03, "moved")
	if grid.Size() != 2 {
		t.Errorf("Size() after replace = %d, want 2", grid.Size())
	}
	entry, _ = grid.Get("gangnam")
	if entry.Data != "moved" {
		t.Errorf("Data after replace = %v, want moved", entry.Data)
	}

	if !grid.Remove("gangnam") {
		t.Error("Remove() returned false for existing entry")
	}
	if grid.Remove("gangnam") {
		t.Error("Remove() returned true for removed entry")
	}

	grid.Clear()
	if grid.Size() != 0 || grid.NumCells() != 0 {
		t.Errorf("after Clear: Size=%d NumCells=%d", grid.Size(), grid.NumCells())
	}
}

func TestSpatialHashGrid_QueryNearbyOrdering(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(1)
	origin := [2]float64{37.5, 127.0}

	// Roughly 0.1, 1, 3 and 8 km north of the origin
	grid.Insert("far", origin[0]+8/111.0, origin[1], nil)
	grid.Insert("mid", origin[0]+3/111.0, origin[1], nil)
	grid.Insert("near", origin[0]+1/111.0, origin[1], nil)
	grid.Insert("closest", origin[0]+0.1/111.0, origin[1], nil)

	results := grid.QueryNearby(origin[0], origin[1], 5)
	want := []string{"closest", "near", "mid"}
	if len(results) != len(want) {
		t.Fatalf("QueryNearby() returned %d results, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].Entry.ID != id {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Entry.ID, id)
		}
		if i > 0 && results[i].DistanceKm < results[i-1].DistanceKm {
			t.Errorf("results not nearest-first at %d", i)
		}
	}
}

func TestSpatialHashGrid_EqualDistanceTieBreak(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(1)
	grid.Insert("b", 37.51, 127.0, nil)
	grid.Insert("a", 37.51, 127.0, nil)
	grid.Insert("c", 37.51, 127.0, nil)

	results := grid.QueryNearby(37.5, 127.0, 5)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, id := range []string{"a", "b", "c"} {
		if results[i].Entry.ID != id {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Entry.ID, id)
		}
	}
}

func TestSpatialHashGrid_LongitudeAtHighLatitude(t *testing.T) {
	t.Parallel()

	// At 60N a degree of longitude is about 55 km; a point 4.5 km east
	// spans more longitude cells than the same distance north would.
	grid := NewSpatialHashGrid(1)
	lat := 60.0
	eastDeg := 4.5 / (kmPerDegree * math.Cos(lat*math.Pi/180))
	grid.Insert("east", lat, 10+eastDeg, nil)

	results := grid.QueryNearby(lat, 10, 5)
	if len(results) != 1 {
		t.Fatalf("QueryNearby() found %d entries, want 1", len(results))
	}
}

func TestSpatialHashGrid_Concurrent(t *testing.T) {
	t.Parallel()

	grid := NewSpatialHashGrid(1)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("r-%d-%d", i, j)
				grid.Insert(id, 37.5+float64(j)*0.001, 127.0, nil)
				_ = grid.QueryNearby(37.5, 127.0, 2)
			}
		}(i)
	}
	wg.Wait()

	if grid.Size() != 500 {
		t.Errorf("Size() = %d, want 500", grid.Size())
	}
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"same point", 37.5, 127.0, 37.5, 127.0, 0, 0.0001},
		{"seoul to busan", 37.5665, 126.9780, 35.1796, 129.0756, 325, 5},
		{"one degree latitude", 0, 0, 1, 0, 111.19, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v (+/-%v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func BenchmarkSpatialHashGrid_QueryNearby(b *testing.B) {
	grid := NewSpatialHashGrid(1)
	for i := 0; i < 10000; i++ {
		grid.Insert(fmt.Sprintf("r%d", i), 37.4+float64(i%100)*0.002, 126.9+float64(i/100)*0.002, nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		grid.QueryNearby(37.5, 127.0, 5)
	}
}
