// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package preference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/models"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mem := kv.NewMemoryStore(0)
	t.Cleanup(func() { _ = mem.Close() })
	return New(mem, WithClock(func() time.Time { return testNow }))
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestCreatedOnFirstInteraction(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Like(ctx, "u1", "r1", 2); err != nil {
		t.Fatalf("Like() error = %v", err)
	}

	pref, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pref.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", pref.UserID)
	}
	if !pref.CreatedAt.Equal(testNow) || !pref.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps = %v / %v, want %v", pref.CreatedAt, pref.UpdatedAt, testNow)
	}
	if len(pref.Likes) != 1 || pref.Likes[0].Strength != 2 {
		t.Errorf("Likes = %+v, want one like with strength 2", pref.Likes)
	}
}

func TestLikeReplacesStrength(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Like(ctx, "u1", "r1", 1)
	pref, err := s.Like(ctx, "u1", "r1", 3)
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if len(pref.Likes) != 1 || pref.Likes[0].Strength != 3 {
		t.Errorf("Likes = %+v, want a single like with strength 3", pref.Likes)
	}

	pref, _ = s.Like(ctx, "u1", "r2", 0)
	if len(pref.Likes) != 2 || pref.Likes[1].Strength != 1 {
		t.Errorf("Likes = %+v, want default strength 1 for r2", pref.Likes)
	}
}

func TestRecordVisit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		visit   models.Visit
		wantErr bool
	}{
		{"valid", models.Visit{RestaurantID: "r1", Rating: 4.5}, false},
		{"unrated", models.Visit{RestaurantID: "r2"}, false},
		{"missing restaurant", models.Visit{Rating: 3}, true},
		{"rating too high", models.Visit{RestaurantID: "r3", Rating: 6}, true},
	}

	for _, tt := range tests {
		_, err := s.RecordVisit(ctx, "u1", tt.visit)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: RecordVisit() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}

	pref, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(pref.Visits) != 2 {
		t.Fatalf("Visits = %d, want 2", len(pref.Visits))
	}
	if !pref.Visits[0].VisitedAt.Equal(testNow) {
		t.Errorf("VisitedAt = %v, want default %v", pref.Visits[0].VisitedAt, testNow)
	}
}

func TestFollowReplacesExisting(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Follow(ctx, "u1", models.Follow{CuratorID: "c1", TrustScore: 50, CuratorType: models.CuratorLocal})
	pref, err := s.Follow(ctx, "u1", models.Follow{CuratorID: "c1", TrustScore: 90, CuratorType: models.CuratorExpert})
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if len(pref.Following) != 1 {
		t.Fatalf("Following = %d entries, want 1", len(pref.Following))
	}
	if pref.Following[0].TrustScore != 90 || pref.Following[0].CuratorType != models.CuratorExpert {
		t.Errorf("Following[0] = %+v", pref.Following[0])
	}

	if _, err := s.Follow(ctx, "u1", models.Follow{CuratorID: "c2", TrustScore: 101}); err == nil {
		t.Error("expected error for trust score above 100")
	}
}

func TestBlockUnblock(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Block(ctx, "u1", "r1")
	_, _ = s.Block(ctx, "u1", "r2")
	pref, err := s.Block(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if len(pref.Negative.BlockedRestaurants) != 2 {
		t.Errorf("BlockedRestaurants = %v, want 2 entries", pref.Negative.BlockedRestaurants)
	}

	pref, err = s.Unblock(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Unblock() error = %v", err)
	}
	if pref.IsBlocked("r1") || !pref.IsBlocked("r2") {
		t.Errorf("BlockedRestaurants = %v, want [r2]", pref.Negative.BlockedRestaurants)
	}
}

func TestGroupVisitValidation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordGroupVisit(ctx, "u1", models.GroupVisit{RestaurantID: "r1", Satisfaction: 0}); err == nil {
		t.Error("expected error for satisfaction 0")
	}
	pref, err := s.RecordGroupVisit(ctx, "u1", models.GroupVisit{RestaurantID: "r1", Satisfaction: 5})
	if err != nil {
		t.Fatalf("RecordGroupVisit() error = %v", err)
	}
	if len(pref.Social.GroupVisits) != 1 {
		t.Errorf("GroupVisits = %+v", pref.Social.GroupVisits)
	}
}

func TestSetPreferencesKeepsHistory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.RecordVisit(ctx, "u1", models.Visit{RestaurantID: "r1", Rating: 4})
	_, err := s.SetGameWeights(ctx, "u1", models.GameWeights{
		Cuisine: map[models.Category]float64{models.CategoryKorean: 40},
		Spicy:   5,
	})
	if err != nil {
		t.Fatalf("SetGameWeights() error = %v", err)
	}
	pref, err := s.SetContextPreferences(ctx, "u1", ContextPreferences{
		TimePreferences: map[models.MealTime]bool{models.MealDinner: true},
	})
	if err != nil {
		t.Fatalf("SetContextPreferences() error = %v", err)
	}

	if pref.GameWeights.Cuisine[models.CategoryKorean] != 40 {
		t.Errorf("GameWeights = %+v", pref.GameWeights)
	}
	if !pref.TimePreferences[models.MealDinner] {
		t.Errorf("TimePreferences = %v", pref.TimePreferences)
	}
	if len(pref.Visits) != 1 {
		t.Errorf("Visits = %d, want history preserved", len(pref.Visits))
	}
}

func TestConcurrentLikesAllLand(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := s.Like(ctx, "u1", fmt.Sprintf("r%d", n), 1); err != nil {
				t.Errorf("Like() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	pref, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(pref.Likes) != 20 {
		t.Errorf("Likes = %d, want 20", len(pref.Likes))
	}
}
