// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

const floatTolerance = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// lookupFrom builds a Lookup over the given restaurants.
func lookupFrom(rs ...*models.Restaurant) Lookup {
	byID := make(map[string]*models.Restaurant, len(rs))
	for _, r := range rs {
		byID[r.ID] = r
	}
	return func(id string) (*models.Restaurant, bool) {
		r, ok := byID[id]
		return r, ok
	}
}

func TestGamePreferenceSignal(t *testing.T) {
	t.Parallel()

	r := &models.Restaurant{
		ID:         "r1",
		Category:   models.CategoryKorean,
		PriceRange: models.PriceCheap,
		Atmosphere: []string{"cozy", "quiet"},
		SpicyLevel: 3,
	}

	tests := []struct {
		name    string
		weights models.GameWeights
		want    float64
	}{
		{"empty weights", models.GameWeights{}, 0},
		{
			name: "all components",
			weights: models.GameWeights{
				Cuisine:    map[models.Category]float64{models.CategoryKorean: 30},
				Price:      map[models.PriceRange]float64{models.PriceCheap: 10},
				Atmosphere: map[string]float64{"cozy": 5, "quiet": 5, "lively": 50},
				Spicy:      4,
			},
			want: 62,
		},
		{
			name:    "clamped high",
			weights: models.GameWeights{Cuisine: map[models.Category]float64{models.CategoryKorean: 250}},
			want:    100,
		},
		{
			name:    "clamped low",
			weights: models.GameWeights{Price: map[models.PriceRange]float64{models.PriceCheap: -40}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := &Input{Restaurant: r, Preference: &models.UserPreference{GameWeights: tt.weights}}
			if got := gamePreferenceSignal(in); !approxEqual(got, tt.want) {
				t.Errorf("gamePreferenceSignal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisitHistorySignal(t *testing.T) {
	t.Parallel()

	target := &models.Restaurant{ID: "r", Category: models.CategoryKorean, Lat: 37.5, Lng: 127.0}
	nearbyKorean := &models.Restaurant{ID: "a", Category: models.CategoryKorean, Lat: 37.5045, Lng: 127.0}
	farJapanese := &models.Restaurant{ID: "b", Category: models.CategoryJapanese, Lat: 35.1, Lng: 129.0}

	pref := &models.UserPreference{Visits: []models.Visit{
		{RestaurantID: "a", Rating: 4},
		{RestaurantID: "r", Rating: 5},
		{RestaurantID: "b", Rating: 2},
	}}

	in := &Input{
		Restaurant: target,
		Preference: pref,
		Lookup:     lookupFrom(target, nearbyKorean, farJapanese),
	}

	// category 2x10 + nearby 2x10 + revisit 20 + avg(4,5)x6
	want := 20.0 + 20.0 + 20.0 + 27.0
	if got := visitHistorySignal(in); !approxEqual(got, want) {
		t.Errorf("visitHistorySignal() = %v, want %v", got, want)
	}

	// Caps: many same-category visits contribute at most 40
	many := &models.UserPreference{}
	for i := 0; i < 10; i++ {
		many.Visits = append(many.Visits, models.Visit{RestaurantID: "b"})
	}
	japanese := &models.Restaurant{ID: "j", Category: models.CategoryJapanese}
	in = &Input{Restaurant: japanese, Preference: many, Lookup: lookupFrom(farJapanese)}
	if got := visitHistorySignal(in); !approxEqual(got, visitSameCategoryCap) {
		t.Errorf("visitHistorySignal() with 10 same-category visits = %v, want %v", got, visitSameCategoryCap)
	}

	// No lookup: only the revisit bonus and its rating remain
	in = &Input{Restaurant: target, Preference: pref}
	if got := visitHistorySignal(in); !approxEqual(got, 20+5*6) {
		t.Errorf("visitHistorySignal() without lookup = %v, want 50", got)
	}
}

func TestFollowingCuratorsSignal(t *testing.T) {
	t.Parallel()

	pref := &models.UserPreference{Following: []models.Follow{
		{CuratorID: "c1", TrustScore: 40, CuratorType: models.CuratorExpert},
		{CuratorID: "c2"},
	}}
	curators := []models.CuratorEndorsement{
		{CuratorID: "c1", TrustScore: 90, CuratorType: models.CuratorYoutuber},
		{CuratorID: "c2", TrustScore: 30, CuratorType: models.CuratorLocal},
		{CuratorID: "c3", TrustScore: 100, CuratorType: models.CuratorExpert},
	}

	in := &Input{Restaurant: &models.Restaurant{ID: "r"}, Preference: pref, Curators: curators}
	// c1: own trust 40 x expert 1.5; c2: endorsement trust 30 x local 1.1; c3 not followed
	want := 40*1.5 + 30*1.1
	if got := followingCuratorsSignal(in); !approxEqual(got, want) {
		t.Errorf("followingCuratorsSignal() = %v, want %v", got, want)
	}

	in.Curators = nil
	if got := followingCuratorsSignal(in); got != 0 {
		t.Errorf("followingCuratorsSignal() without endorsements = %v, want 0", got)
	}
}

func TestLikedPatternSignal(t *testing.T) {
	t.Parallel()

	target := &models.Restaurant{ID: "r", Category: models.CategoryKorean, PriceRange: models.PriceModerate, Tags: []string{"bbq", "family"}}
	sameCategory := &models.Restaurant{ID: "l1", Category: models.CategoryKorean, PriceRange: models.PriceLuxury}
	sharedTags := &models.Restaurant{ID: "l2", Category: models.CategoryJapanese, PriceRange: models.PriceExpensive, Tags: []string{"bbq", "family", "late"}}
	oneTag := &models.Restaurant{ID: "l3", Category: models.CategoryChinese, PriceRange: models.PriceExpensive, Tags: []string{"bbq"}}

	pref := &models.UserPreference{Likes: []models.Like{
		{RestaurantID: "r", Strength: 2},
		{RestaurantID: "l1", Strength: 1},
		{RestaurantID: "l2", Strength: 1},
		{RestaurantID: "l3", Strength: 5},
		{RestaurantID: "unknown", Strength: 5},
	}}

	in := &Input{Restaurant: target, Preference: pref, Lookup: lookupFrom(sameCategory, sharedTags, oneTag)}
	want := (2.0 + 1.0 + 1.0) * likeStrengthPoints
	if got := likedPatternSignal(in); !approxEqual(got, want) {
		t.Errorf("likedPatternSignal() = %v, want %v", got, want)
	}
}

func TestSocialInfluenceSignal(t *testing.T) {
	t.Parallel()

	pref := &models.UserPreference{Social: models.SocialSignals{
		FriendsLiked: map[string]models.FriendLikes{"r": {Friends: 2, CloseFriends: 1}},
		GroupVisits: []models.GroupVisit{
			{RestaurantID: "r", Satisfaction: 5},
			{RestaurantID: "r", Satisfaction: 3},
			{RestaurantID: "other", Satisfaction: 5},
		},
	}}

	in := &Input{Restaurant: &models.Restaurant{ID: "r"}, Preference: pref}
	if got := socialInfluenceSignal(in); !approxEqual(got, 55) {
		t.Errorf("socialInfluenceSignal() = %v, want 55", got)
	}
}

func TestTimeContextSignal(t *testing.T) {
	t.Parallel()

	dinner := time.Date(2026, 7, 15, 19, 0, 0, 0, time.UTC)
	lateNight := time.Date(2026, 7, 15, 1, 0, 0, 0, time.UTC)
	pref := &models.UserPreference{TimePreferences: map[models.MealTime]bool{models.MealDinner: true}}
	popular := map[models.MealTime]float64{models.MealDinner: 50}

	tests := []struct {
		name  string
		at    time.Time
		hours *models.BusinessHours
		want  float64
	}{
		{"open at preferred meal", dinner, &models.BusinessHours{Open: "17:00", Close: "23:00"}, 30 + 40 + 15},
		{"closed at preferred meal", dinner, &models.BusinessHours{Open: "09:00", Close: "15:00"}, 30 - 20 + 15},
		{"unknown hours", dinner, nil, 30 + 15},
		{"open past midnight", lateNight, &models.BusinessHours{Open: "18:00", Close: "02:00"}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &models.Restaurant{ID: "r", Hours: tt.hours, PopularTimes: popular}
			in := &Input{Restaurant: r, Preference: pref, At: tt.at}
			if got := timeContextSignal(in); !approxEqual(got, tt.want) {
				t.Errorf("timeContextSignal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompanionContextSignal(t *testing.T) {
	t.Parallel()

	pref := &models.UserPreference{Companions: map[models.Companion]models.CompanionPreference{
		models.CompanionFriends: {
			Categories:  []models.Category{models.CategoryKorean},
			Atmospheres: []string{"lively", "casual"},
		},
	}}
	r := &models.Restaurant{ID: "r", Category: models.CategoryKorean, Atmosphere: []string{"lively", "casual", "cozy"}}

	in := &Input{Restaurant: r, Preference: pref, Companion: models.CompanionFriends}
	if got := companionContextSignal(in); !approxEqual(got, 80) {
		t.Errorf("companionContextSignal() = %v, want 80", got)
	}

	in.Companion = ""
	if got := companionContextSignal(in); got != 0 {
		t.Errorf("companionContextSignal() without companion = %v, want 0", got)
	}

	in.Companion = models.CompanionFamily
	if got := companionContextSignal(in); got != 0 {
		t.Errorf("companionContextSignal() for unset companion = %v, want 0", got)
	}
}

func TestSeasonalContextSignal(t *testing.T) {
	t.Parallel()

	pref := &models.UserPreference{Seasons: map[models.Season]models.SeasonPreference{
		models.SeasonSummer: {
			Categories: []models.Category{models.CategoryKorean},
			Dishes:     []string{"naengmyeon", "bingsu"},
		},
	}}
	r := &models.Restaurant{ID: "r", Category: models.CategoryKorean, SignatureDishes: []string{"naengmyeon"}}

	in := &Input{Restaurant: r, Preference: pref, At: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}
	if got := seasonalContextSignal(in); !approxEqual(got, 75) {
		t.Errorf("seasonalContextSignal() in summer = %v, want 75", got)
	}

	in.At = time.Date(2026, 12, 1, 12, 0, 0, 0, time.UTC)
	if got := seasonalContextSignal(in); got != 0 {
		t.Errorf("seasonalContextSignal() in winter = %v, want 0", got)
	}
}

func TestTrendingSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts *models.EngagementCounts
		want   float64
	}{
		{"no data", nil, 0},
		{"no recent engagement", &models.EngagementCounts{Recent: 0, Previous: 10}, 0},
		{"new and hot", &models.EngagementCounts{Recent: 3, Previous: 0}, 100},
		{"cooling", &models.EngagementCounts{Recent: 2, Previous: 4}, 25},
		{"steady", &models.EngagementCounts{Recent: 4, Previous: 4}, 50},
	}

	for _, tt := range tests {
		in := &Input{Restaurant: &models.Restaurant{ID: "r"}, Preference: &models.UserPreference{}, Engagement: tt.counts}
		if got := trendingSignal(in); !approxEqual(got, tt.want) {
			t.Errorf("%s: trendingSignal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDistanceSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		km   float64
		want float64
	}{
		{-1, 50},
		{0, 100},
		{0.49, 100},
		{0.5, 80},
		{0.99, 80},
		{1.5, 60},
		{4.9, 40},
		{9.9, 20},
		{10, 0},
	}

	for _, tt := range tests {
		in := &Input{DistanceKm: tt.km}
		if got := distanceSignal(in); got != tt.want {
			t.Errorf("distanceSignal(%v km) = %v, want %v", tt.km, got, tt.want)
		}
	}
}

func TestMealTimeAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour, minute int
		want         models.MealTime
	}{
		{5, 59, models.MealLateNight},
		{6, 0, models.MealBreakfast},
		{10, 59, models.MealBreakfast},
		{11, 0, models.MealLunch},
		{14, 0, models.MealAfternoon},
		{17, 0, models.MealDinner},
		{21, 59, models.MealDinner},
		{22, 0, models.MealLateNight},
		{3, 0, models.MealLateNight},
	}

	for _, tt := range tests {
		at := time.Date(2026, 1, 1, tt.hour, tt.minute, 0, 0, time.UTC)
		if got := MealTimeAt(at); got != tt.want {
			t.Errorf("MealTimeAt(%02d:%02d) = %s, want %s", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestSeasonAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month time.Month
		want  models.Season
	}{
		{time.February, models.SeasonWinter},
		{time.March, models.SeasonSpring},
		{time.May, models.SeasonSpring},
		{time.June, models.SeasonSummer},
		{time.August, models.SeasonSummer},
		{time.September, models.SeasonAutumn},
		{time.November, models.SeasonAutumn},
		{time.December, models.SeasonWinter},
	}

	for _, tt := range tests {
		at := time.Date(2026, tt.month, 10, 12, 0, 0, 0, time.UTC)
		if got := SeasonAt(at); got != tt.want {
			t.Errorf("SeasonAt(%s) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestSharedCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b []string
		want int
	}{
		{nil, []string{"x"}, 0},
		{[]string{"x", "y"}, []string{"y", "z", "x"}, 2},
		{[]string{"x", "x"}, []string{"x"}, 1},
	}

	for _, tt := range tests {
		if got := sharedCount(tt.a, tt.b); got != tt.want {
			t.Errorf("sharedCount(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
