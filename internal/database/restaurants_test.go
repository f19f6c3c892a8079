// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

//go:build integration

package database

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/recommend"
)

func fullRestaurant(id string) *models.Restaurant {
	return &models.Restaurant{
		ID:              id,
		Name:            "Seoul Kitchen " + id,
		Category:        models.CategoryKorean,
		PriceRange:      models.PriceModerate,
		Atmosphere:      []string{"cozy", "lively"},
		Tags:            []string{"bbq", "late-night"},
		Lat:             37.5665,
		Lng:             126.978,
		Address:         "Jung-gu, Seoul",
		SignatureDishes: []string{"samgyeopsal"},
		SpicyLevel:      3,
		Hours:           &models.BusinessHours{Open: "17:00", Close: "02:00"},
		PopularTimes:    map[models.MealTime]float64{models.MealDinner: 90},
		AverageRating:   4.6,
		ReviewCount:     321,
	}
}

func TestRestaurants_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	want := fullRestaurant("r1")
	if err := db.UpsertRestaurant(ctx, want); err != nil {
		t.Fatalf("UpsertRestaurant() error = %v", err)
	}

	got, err := db.GetRestaurant(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRestaurant() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetRestaurant() = %+v, want %+v", got, want)
	}
}

func TestRestaurants_OptionalFieldsEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	bare := &models.Restaurant{ID: "bare", Name: "Bare", Category: models.CategoryCafe, PriceRange: models.PriceCheap}
	if err := db.UpsertRestaurant(ctx, bare); err != nil {
		t.Fatalf("UpsertRestaurant() error = %v", err)
	}

	got, err := db.GetRestaurant(ctx, "bare")
	if err != nil {
		t.Fatalf("GetRestaurant() error = %v", err)
	}
	if got.Hours != nil {
		t.Errorf("Hours = %+v, want nil", got.Hours)
	}
	if len(got.Atmosphere) != 0 || len(got.Tags) != 0 || len(got.SignatureDishes) != 0 || len(got.PopularTimes) != 0 {
		t.Errorf("list fields should be empty, got %+v", got)
	}
	if got.HasLocation() {
		t.Error("restaurant without coordinates should have no location")
	}
}

func TestRestaurants_UpsertReplacesAndListOrders(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	for _, id := range []string{"c", "a", "b"} {
		if err := db.UpsertRestaurant(ctx, fullRestaurant(id)); err != nil {
			t.Fatalf("UpsertRestaurant(%s) error = %v", id, err)
		}
	}
	updated := fullRestaurant("a")
	updated.Name = "Renamed"
	updated.Hours = nil
	if err := db.UpsertRestaurant(ctx, updated); err != nil {
		t.Fatalf("UpsertRestaurant(update) error = %v", err)
	}

	list, err := db.ListRestaurants(ctx)
	if err != nil {
		t.Fatalf("ListRestaurants() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListRestaurants() returned %d rows, want 3", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %s, want %s", i, list[i].ID, want)
		}
	}
	if list[0].Name != "Renamed" || list[0].Hours != nil {
		t.Errorf("upsert did not replace row: %+v", list[0])
	}
}

func TestRestaurants_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRestaurant(testContext(t), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRestaurant(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRestaurants_FeedCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	if err := db.UpsertRestaurant(ctx, fullRestaurant("r1")); err != nil {
		t.Fatalf("UpsertRestaurant() error = %v", err)
	}

	catalog := recommend.NewCatalog(db)
	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("Catalog.Refresh() error = %v", err)
	}
	if _, ok := catalog.Get("r1"); !ok {
		t.Error("catalog should contain r1 after refresh from the database")
	}
}

func TestCurators_FetchBatched(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	endorsements := []models.CuratorEndorsement{
		{CuratorID: "chef", RestaurantID: "r1", CuratorType: models.CuratorExpert, TrustScore: 40},
		{CuratorID: "local", RestaurantID: "r1", CuratorType: models.CuratorLocal, TrustScore: 30},
		{CuratorID: "chef", RestaurantID: "r2", CuratorType: models.CuratorExpert, TrustScore: 10},
		{CuratorID: "chef", RestaurantID: "r3", CuratorType: models.CuratorExpert, TrustScore: 10},
	}
	for i := range endorsements {
		if err := db.UpsertEndorsement(ctx, &endorsements[i]); err != nil {
			t.Fatalf("UpsertEndorsement() error = %v", err)
		}
	}
	// Re-endorsing updates the trust score
	endorsements[2].TrustScore = 25
	if err := db.UpsertEndorsement(ctx, &endorsements[2]); err != nil {
		t.Fatalf("UpsertEndorsement(update) error = %v", err)
	}

	got, err := db.FetchTrustedCurators(ctx, []string{"r1", "r2", "r9"})
	if err != nil {
		t.Fatalf("FetchTrustedCurators() error = %v", err)
	}
	if len(got["r1"]) != 2 {
		t.Errorf("r1 endorsements = %d, want 2", len(got["r1"]))
	}
	if len(got["r2"]) != 1 || got["r2"][0].TrustScore != 25 {
		t.Errorf("r2 endorsements = %+v, want one with trust 25", got["r2"])
	}
	if _, ok := got["r3"]; ok {
		t.Error("r3 was not requested")
	}
	if _, ok := got["r9"]; ok {
		t.Error("r9 has no endorsements and should be absent")
	}

	empty, err := db.FetchTrustedCurators(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("FetchTrustedCurators(nil) = %v, %v", empty, err)
	}
}

func TestEngagementCounts_Windows(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	at := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour
	events := []struct {
		id   string
		kind models.EngagementKind
		at   time.Time
	}{
		{"hot", models.EngagementLike, at.Add(-time.Hour)},
		{"hot", models.EngagementVisit, at.Add(-2 * 24 * time.Hour)},
		{"hot", models.EngagementLike, at.Add(-week - time.Hour)},
		{"old", models.EngagementLike, at.Add(-week - 24*time.Hour)},
		{"ancient", models.EngagementLike, at.Add(-3 * week)},
		{"future", models.EngagementLike, at.Add(time.Hour)},
	}
	for _, e := range events {
		if err := db.RecordEngagement(ctx, e.id, e.kind, e.at); err != nil {
			t.Fatalf("RecordEngagement() error = %v", err)
		}
	}

	got, err := db.EngagementCounts(ctx, []string{"hot", "old", "ancient", "future"}, at, week)
	if err != nil {
		t.Fatalf("EngagementCounts() error = %v", err)
	}

	if c := got["hot"]; c.Recent != 2 || c.Previous != 1 {
		t.Errorf("hot = %+v, want {2 1}", c)
	}
	if c := got["old"]; c.Recent != 0 || c.Previous != 1 {
		t.Errorf("old = %+v, want {0 1}", c)
	}
	if _, ok := got["ancient"]; ok {
		t.Error("events older than both windows should not count")
	}
	if _, ok := got["future"]; ok {
		t.Error("events after the reference time should not count")
	}
}

func TestSaveRecommendationLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	entry := &recommend.LogEntry{
		ID:       "log-1",
		UserID:   "u1",
		Fallback: true,
		Context:  recommend.Context{Companion: models.CompanionFriends},
		Results: []recommend.LogResult{
			{RestaurantID: "r1", TotalScore: 88.5},
		},
		CreatedAt: time.Date(2026, 7, 15, 12, 0, 0, 123456789, time.UTC),
	}
	if err := db.SaveRecommendationLog(ctx, entry); err != nil {
		t.Fatalf("SaveRecommendationLog() error = %v", err)
	}

	var userID, results string
	var fallback bool
	var createdAt time.Time
	err := db.Conn().QueryRowContext(ctx,
		`SELECT user_id, fallback, results, created_at FROM recommendation_logs WHERE id = ?`, "log-1").
		Scan(&userID, &fallback, &results, &createdAt)
	if err != nil {
		t.Fatalf("query log error = %v", err)
	}
	if userID != "u1" || !fallback {
		t.Errorf("row = (%s, %v), want (u1, true)", userID, fallback)
	}
	var decoded []recommend.LogResult
	if err := decodeJSON(results, &decoded); err != nil || len(decoded) != 1 || decoded[0].RestaurantID != "r1" {
		t.Errorf("results = %s (%v)", results, err)
	}
	if want := entry.CreatedAt.Truncate(time.Microsecond); !createdAt.Equal(want) {
		t.Errorf("created_at = %v, want %v", createdAt, want)
	}

	if err := db.SaveRecommendationLog(ctx, entry); err == nil {
		t.Error("duplicate log ID should fail")
	}
}
