// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
)

var errBoom = errors.New("boom")

type fakePrefs struct {
	mu    sync.Mutex
	prefs map[string]*models.UserPreference
	err   error
	calls int
}

func (f *fakePrefs) Get(_ context.Context, userID string) (*models.UserPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.prefs[userID]
	if !ok {
		return nil, preference.ErrNotFound
	}
	return p, nil
}

func (f *fakePrefs) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCurators struct {
	byRestaurant map[string][]models.CuratorEndorsement
	err          error
}

func (f *fakeCurators) FetchTrustedCurators(_ context.Context, ids []string) (map[string][]models.CuratorEndorsement, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string][]models.CuratorEndorsement)
	for _, id := range ids {
		if es, ok := f.byRestaurant[id]; ok {
			out[id] = es
		}
	}
	return out, nil
}

type fakeEngagement struct {
	counts map[string]models.EngagementCounts
	block  bool
}

func (f *fakeEngagement) EngagementCounts(ctx context.Context, _ []string, _ time.Time, _ time.Duration) (map[string]models.EngagementCounts, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.counts, nil
}

type recordingLogStore struct {
	mu      sync.Mutex
	entries []*LogEntry
	err     error
}

func (s *recordingLogStore) SaveRecommendationLog(_ context.Context, entry *LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *recordingLogStore) saved() []*LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*LogEntry(nil), s.entries...)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newTestEngine(t *testing.T, cfg *Config, prefs PreferenceSource, restaurants []models.Restaurant, opts ...Option) *Engine {
	t.Helper()

	cat := NewCatalog(nil)
	cat.Replace(restaurants)

	e, err := NewEngine(cfg, prefs, cat, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// summerNight is a request time with no meal preference or season data in the fixtures.
var summerNight = time.Date(2026, 7, 15, 3, 0, 0, 0, time.UTC)

func koreanFanPrefs() *fakePrefs {
	return &fakePrefs{prefs: map[string]*models.UserPreference{
		"fan": {
			UserID: "fan",
			GameWeights: models.GameWeights{
				Cuisine: map[models.Category]float64{models.CategoryKorean: 100},
			},
		},
	}}
}

func mixedCatalog() []models.Restaurant {
	return []models.Restaurant{
		testRestaurant("k2", models.CategoryKorean, 0, 0, 3, 1),
		testRestaurant("c1", models.CategoryChinese, 0, 0, 5, 1),
		testRestaurant("k1", models.CategoryKorean, 0, 0, 3, 1),
		testRestaurant("j1", models.CategoryJapanese, 0, 0, 5, 1),
	}
}

func recommendationIDs(recs []ScoredRecommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Restaurant.ID
	}
	return ids
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	cat := NewCatalog(nil)
	if _, err := NewEngine(testConfig(), nil, cat, zerolog.Nop()); err == nil {
		t.Error("NewEngine() without preference source should fail")
	}
	if _, err := NewEngine(testConfig(), &fakePrefs{}, nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine() without catalog should fail")
	}

	bad := testConfig()
	bad.Weights.Distance = 0.5
	if _, err := NewEngine(bad, &fakePrefs{}, cat, zerolog.Nop()); err == nil {
		t.Error("NewEngine() with weights not summing to 1 should fail")
	}

	if _, err := NewEngine(nil, &fakePrefs{}, cat, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine() with nil config should use defaults, got %v", err)
	}
}

func TestEngine_NewUserFallback(t *testing.T) {
	t.Parallel()

	restaurants := []models.Restaurant{
		testRestaurant("a", models.CategoryKorean, 37.501, 127.0, 4.5, 100),
		testRestaurant("b", models.CategoryCafe, 37.502, 127.001, 4.8, 10),
		testRestaurant("c", models.CategoryBar, 37.503, 127.0, 4.5, 300),
		testRestaurant("far", models.CategoryKorean, 35.1, 129.0, 5.0, 1000),
	}
	e := newTestEngine(t, testConfig(), &fakePrefs{}, restaurants)

	res, err := e.GetRecommendations(context.Background(), "newcomer", Context{
		Location: &Location{Lat: 37.5, Lng: 127.0},
	}, 10)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	if !res.Fallback {
		t.Error("Fallback = false, want true")
	}
	if res.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3", res.TotalCandidates)
	}
	if got := recommendationIDs(res.Recommendations); !equalIDs(got, []string{"b", "c", "a"}) {
		t.Fatalf("order = %v, want [b c a]", got)
	}

	wantScores := []float64{96, 90, 90}
	for i, r := range res.Recommendations {
		if !approxEqual(r.TotalScore, wantScores[i]) {
			t.Errorf("%s: TotalScore = %v, want %v", r.Restaurant.ID, r.TotalScore, wantScores[i])
		}
		if r.Confidence != ConfidenceMedium {
			t.Errorf("%s: Confidence = %s, want medium", r.Restaurant.ID, r.Confidence)
		}
		if len(r.Explanation) != 1 || r.Explanation[0] != FallbackExplanation {
			t.Errorf("%s: Explanation = %v, want [%s]", r.Restaurant.ID, r.Explanation, FallbackExplanation)
		}
		if r.Distance < 0 {
			t.Errorf("%s: Distance = %v, want known distance", r.Restaurant.ID, r.Distance)
		}
	}
	if res.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestEngine_FallbackWithoutLocation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), &fakePrefs{}, mixedCatalog())

	res, err := e.GetRecommendations(context.Background(), "newcomer", Context{}, 2)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	// Equal ratings and review counts keep ID order
	if got := recommendationIDs(res.Recommendations); !equalIDs(got, []string{"c1", "j1"}) {
		t.Errorf("order = %v, want [c1 j1]", got)
	}
	if res.TotalCandidates != 4 {
		t.Errorf("TotalCandidates = %d, want 4", res.TotalCandidates)
	}
}

func TestEngine_Personalized(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), koreanFanPrefs(), mixedCatalog())

	res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, 10)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	if res.Fallback {
		t.Error("Fallback = true, want false")
	}
	// Korean first; ties keep ID order
	if got := recommendationIDs(res.Recommendations); !equalIDs(got, []string{"k1", "k2", "c1", "j1"}) {
		t.Fatalf("order = %v, want [k1 k2 c1 j1]", got)
	}

	top := res.Recommendations[0]
	if !approxEqual(top.TotalScore, 21) {
		t.Errorf("top TotalScore = %v, want 21", top.TotalScore)
	}
	if top.Confidence != ConfidenceLow {
		t.Errorf("top Confidence = %s, want low", top.Confidence)
	}
	if len(top.Explanation) == 0 || top.Explanation[0] != explanationPhrases[SignalGamePreference] {
		t.Errorf("top Explanation = %v, want game preference first", top.Explanation)
	}
	if top.Distance != -1 {
		t.Errorf("top Distance = %v, want -1", top.Distance)
	}
	for _, r := range res.Recommendations {
		for _, phrase := range r.Explanation {
			if phrase == explanationPhrases[SignalDistance] {
				t.Errorf("%s explained by distance without a request location", r.Restaurant.ID)
			}
		}
	}

	for i := 1; i < len(res.Recommendations); i++ {
		if res.Recommendations[i].TotalScore > res.Recommendations[i-1].TotalScore {
			t.Errorf("results not sorted descending at %d", i)
		}
	}
}

func TestEngine_BlockedNeverReturned(t *testing.T) {
	t.Parallel()

	prefs := koreanFanPrefs()
	prefs.prefs["fan"].Negative.BlockedRestaurants = []string{"k1"}
	e := newTestEngine(t, testConfig(), prefs, mixedCatalog())

	res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, 10)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	for _, r := range res.Recommendations {
		if r.Restaurant.ID == "k1" {
			t.Fatal("blocked restaurant k1 was recommended")
		}
	}
	if res.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3", res.TotalCandidates)
	}
}

func TestEngine_Limits(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.DefaultLimit = 2
	cfg.MaxLimit = 3
	e := newTestEngine(t, cfg, koreanFanPrefs(), mixedCatalog())

	tests := []struct {
		limit int
		want  int
	}{
		{0, 2},
		{-5, 2},
		{1, 1},
		{3, 3},
		{50, 3},
	}

	for _, tt := range tests {
		res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, tt.limit)
		if err != nil {
			t.Fatalf("limit %d: error = %v", tt.limit, err)
		}
		if len(res.Recommendations) != tt.want {
			t.Errorf("limit %d: got %d results, want %d", tt.limit, len(res.Recommendations), tt.want)
		}
		if res.TotalCandidates != 4 {
			t.Errorf("limit %d: TotalCandidates = %d, want 4", tt.limit, res.TotalCandidates)
		}
	}
}

func TestEngine_EmptyCatalog(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), koreanFanPrefs(), nil)

	res, err := e.GetRecommendations(context.Background(), "fan", Context{
		Location: &Location{Lat: 37.5, Lng: 127.0},
	}, 10)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if res.Recommendations == nil || len(res.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want empty non-nil slice", res.Recommendations)
	}
}

func TestEngine_CuratorsAndTrending(t *testing.T) {
	t.Parallel()

	prefs := koreanFanPrefs()
	prefs.prefs["fan"].Following = []models.Follow{
		{CuratorID: "chef", TrustScore: 60, CuratorType: models.CuratorExpert},
	}
	curators := &fakeCurators{byRestaurant: map[string][]models.CuratorEndorsement{
		"k2": {{CuratorID: "chef", RestaurantID: "k2", TrustScore: 60, CuratorType: models.CuratorExpert}},
	}}
	engagement := &fakeEngagement{counts: map[string]models.EngagementCounts{
		"k1": {Recent: 10, Previous: 1},
	}}

	e := newTestEngine(t, testConfig(), prefs, mixedCatalog(),
		WithCuratorSource(curators), WithEngagementSource(engagement))

	res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, 10)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	if got := recommendationIDs(res.Recommendations); !equalIDs(got, []string{"k2", "k1", "c1", "j1"}) {
		t.Fatalf("order = %v, want [k2 k1 c1 j1]", got)
	}
	if got := res.Recommendations[0].Breakdown.FollowingCurators; !approxEqual(got, 90) {
		t.Errorf("k2 FollowingCurators = %v, want 90", got)
	}
	if got := res.Recommendations[1].Breakdown.Trending; !approxEqual(got, 100) {
		t.Errorf("k1 Trending = %v, want 100", got)
	}
}

func TestEngine_DependencyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prefs *fakePrefs
		opts  []Option
	}{
		{"preference store", &fakePrefs{err: errBoom}, nil},
		{"curator source", koreanFanPrefs(), []Option{WithCuratorSource(&fakeCurators{err: errBoom})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, testConfig(), tt.prefs, mixedCatalog(), tt.opts...)
			res, err := e.GetRecommendations(context.Background(), "fan", Context{}, 10)
			if !errors.Is(err, errBoom) {
				t.Errorf("error = %v, want %v", err, errBoom)
			}
			if res != nil {
				t.Error("failed request should not return a partial result")
			}
		})
	}
}

func TestEngine_BreakerOpens(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Breaker.FailureThreshold = 2
	cfg.Breaker.Timeout = time.Minute
	prefs := &fakePrefs{err: errBoom}
	e := newTestEngine(t, cfg, prefs, mixedCatalog())

	for i := 0; i < 2; i++ {
		if _, err := e.GetRecommendations(context.Background(), "u", Context{}, 5); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: error = %v, want %v", i, err, errBoom)
		}
	}

	_, err := e.GetRecommendations(context.Background(), "u", Context{}, 5)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want %v", err, gobreaker.ErrOpenState)
	}
	if prefs.callCount() != 2 {
		t.Errorf("preference source called %d times, want 2", prefs.callCount())
	}
	if e.BreakerState() != gobreaker.StateOpen.String() {
		t.Errorf("BreakerState() = %s, want open", e.BreakerState())
	}
}

func TestEngine_UnknownUsersDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Breaker.FailureThreshold = 2
	e := newTestEngine(t, cfg, &fakePrefs{}, mixedCatalog())

	for i := 0; i < 5; i++ {
		if _, err := e.GetRecommendations(context.Background(), "nobody", Context{}, 5); err != nil {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}
	if e.BreakerState() != gobreaker.StateClosed.String() {
		t.Errorf("BreakerState() = %s, want closed", e.BreakerState())
	}
}

func TestEngine_Timeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	e := newTestEngine(t, cfg, koreanFanPrefs(), mixedCatalog(),
		WithEngagementSource(&fakeEngagement{block: true}))

	_, err := e.GetRecommendations(context.Background(), "fan", Context{}, 5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestEngine_InvalidContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), koreanFanPrefs(), mixedCatalog())

	tests := []struct {
		name string
		rc   Context
	}{
		{"latitude", Context{Location: &Location{Lat: 91, Lng: 0}}},
		{"longitude", Context{Location: &Location{Lat: 0, Lng: -181}}},
		{"companion", Context{Companion: "pets"}},
	}

	for _, tt := range tests {
		if _, err := e.GetRecommendations(context.Background(), "fan", tt.rc, 5); !errors.Is(err, ErrInvalidContext) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, ErrInvalidContext)
		}
	}
}

func TestEngine_DefaultTime(t *testing.T) {
	t.Parallel()

	kst := time.FixedZone("KST", 9*60*60)
	fixed := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, testConfig(), koreanFanPrefs(), nil,
		WithClock(func() time.Time { return fixed }), WithLocation(kst))

	got := e.resolveTime(time.Time{})
	if got.Location() != kst || got.Hour() != 19 {
		t.Errorf("resolveTime() = %v, want 19:00 KST", got)
	}
	if MealTimeAt(got) != models.MealDinner {
		t.Errorf("MealTimeAt() = %s, want dinner", MealTimeAt(got))
	}

	explicit := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if got := e.resolveTime(explicit); !got.Equal(explicit) {
		t.Errorf("resolveTime() changed an explicit time: %v", got)
	}
}

func TestEngine_RecommendationLog(t *testing.T) {
	t.Parallel()

	store := &recordingLogStore{}
	recLog := NewRecLogger(store, 8)
	e := newTestEngine(t, testConfig(), koreanFanPrefs(), mixedCatalog(), WithRecLogger(recLog))

	res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, 3)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if err := recLog.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := store.saved()
	if len(entries) != 1 {
		t.Fatalf("saved %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Error("entry should have an ID and CreatedAt")
	}
	if entry.UserID != "fan" || entry.Fallback {
		t.Errorf("entry = %+v, want personalized entry for fan", entry)
	}
	if len(entry.Results) != len(res.Recommendations) {
		t.Fatalf("entry has %d results, want %d", len(entry.Results), len(res.Recommendations))
	}
	if entry.Results[0].RestaurantID != "k1" || !approxEqual(entry.Results[0].Breakdown.GamePreference, 100) {
		t.Errorf("first result = %+v, want k1 with full game preference", entry.Results[0])
	}
}

func TestEngine_LogFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	store := &recordingLogStore{err: errBoom}
	recLog := NewRecLogger(store, 8)
	defer recLog.Close()
	e := newTestEngine(t, testConfig(), &fakePrefs{}, mixedCatalog(), WithRecLogger(recLog))

	if _, err := e.GetRecommendations(context.Background(), "newcomer", Context{}, 3); err != nil {
		t.Errorf("GetRecommendations() error = %v, want nil", err)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), koreanFanPrefs(), mixedCatalog())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.GetRecommendations(context.Background(), "fan", Context{CurrentTime: summerNight}, 10)
			if err != nil {
				errs <- err
				return
			}
			if res.Recommendations[0].Restaurant.ID != "k1" {
				errs <- errors.New("unstable ranking under concurrency")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
