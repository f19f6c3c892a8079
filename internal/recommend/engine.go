// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
)

// trendingWindow is the length of each engagement window compared by the
// trending signal.
const trendingWindow = 7 * 24 * time.Hour

// Engine orchestrates candidate selection, scoring and ranking.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	prefs      PreferenceSource
	catalog    *Catalog
	selector   *Selector
	scorer     *Scorer
	curators   CuratorSource
	engagement EngagementSource
	recLog     *RecLogger
	breaker    *gobreaker.CircuitBreaker[any]

	now      func() time.Time
	location *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithCuratorSource enables the followingCurators signal.
func WithCuratorSource(src CuratorSource) Option {
	return func(e *Engine) { e.curators = src }
}

// WithEngagementSource enables the trending signal.
func WithEngagementSource(src EngagementSource) Option {
	return func(e *Engine) { e.engagement = src }
}

// WithRecLogger enables asynchronous recommendation logging.
func WithRecLogger(l *RecLogger) Option {
	return func(e *Engine) { e.recLog = l }
}

// WithClock overrides the time source used when a request has no CurrentTime.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone whose wall clock drives meal times when a
// request has no CurrentTime.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, prefs PreferenceSource, catalog *Catalog, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if prefs == nil || catalog == nil {
		return nil, fmt.Errorf("preference source and catalog are required")
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		prefs:    prefs,
		catalog:  catalog,
		selector: NewSelector(catalog, cfg.MaxRadiusKm, cfg.MaxCandidates),
		scorer:   NewScorer(cfg.Weights),
		breaker:  newDependencyBreaker(cfg.Breaker),
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GetRecommendations returns up to limit ranked restaurants for userID.
//
// Users without a preference record get the popularity fallback. Any
// dependency failure or timeout fails the whole request; a failure to log
// the result does not.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) GetRecommendations(ctx context.Context, userID string, rc Context, limit int) (*Result, error) {
	start := time.Now()

	if err := rc.Validate(); err != nil {
		return nil, err
	}
	limit = e.normalizeLimit(limit)
	rc.CurrentTime = e.resolveTime(rc.CurrentTime)

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	logger := e.createRequestLogger(ctx, userID)

	pref, err := e.loadPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommendations for %s: %w", userID, err)
	}

	var result *Result
	if pref == nil {
		result = e.fallback(rc, limit)
	} else {
		result, err = e.personalized(ctx, pref, rc, limit)
		if err != nil {
			return nil, fmt.Errorf("recommendations for %s: %w", userID, err)
		}
	}
	result.GeneratedAt = e.now().UTC()

	e.logResult(userID, rc, result)
	metrics.RecordRecommendation(result.Fallback, result.TotalCandidates, time.Since(start))

	logger.Debug().
		Bool("fallback", result.Fallback).
		Int("candidates", result.TotalCandidates).
		Int("returned", len(result.Recommendations)).
		Dur("duration", time.Since(start)).
		Msg("recommendation complete")

	return result, nil
}

// normalizeLimit applies the default and the ceiling.
func (e *Engine) normalizeLimit(limit int) int {
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	return limit
}

// resolveTime defaults the request time to now in the engine's zone.
func (e *Engine) resolveTime(t time.Time) time.Time {
	if t.IsZero() {
		return e.now().In(e.location)
	}
	return t
}

func (e *Engine) createRequestLogger(ctx context.Context, userID string) zerolog.Logger {
	logCtx := e.logger.With().Str("user_id", userID)
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	return logCtx.Logger()
}

// loadPreference returns nil without error for users with no record.
func (e *Engine) loadPreference(ctx context.Context, userID string) (*models.UserPreference, error) {
	pref, err := guarded(e.breaker, func() (*models.UserPreference, error) {
		return e.prefs.Get(ctx, userID)
	})
	if errors.Is(err, preference.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return pref, nil
}

// personalized runs the main path: select, prefetch, score, rank, explain.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) personalized(ctx context.Context, pref *models.UserPreference, rc Context, limit int) (*Result, error) {
	candidates := e.selector.Select(pref, rc.Location)
	result := &Result{TotalCandidates: len(candidates)}
	if len(candidates) == 0 {
		result.Recommendations = []ScoredRecommendation{}
		return result, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Restaurant.ID
	}

	curators, err := e.fetchCurators(ctx, ids)
	if err != nil {
		return nil, err
	}
	engagement, err := e.fetchEngagement(ctx, ids, rc.CurrentTime)
	if err != nil {
		return nil, err
	}

	scored := e.scoreCandidates(pref, rc, candidates, curators, engagement)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}

	// Stable so equal scores keep candidate order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		scored[i].Explanation = Explain(&scored[i].Breakdown, scored[i].Distance >= 0)
		scored[i].Confidence = ConfidenceFor(scored[i].TotalScore)
	}

	result.Recommendations = scored
	return result, nil
}

func (e *Engine) fetchCurators(ctx context.Context, ids []string) (map[string][]models.CuratorEndorsement, error) {
	if e.curators == nil {
		return nil, nil
	}
	curators, err := guarded(e.breaker, func() (map[string][]models.CuratorEndorsement, error) {
		return e.curators.FetchTrustedCurators(ctx, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch curators: %w", err)
	}
	return curators, nil
}

func (e *Engine) fetchEngagement(ctx context.Context, ids []string, at time.Time) (map[string]models.EngagementCounts, error) {
	if e.engagement == nil {
		return nil, nil
	}
	counts, err := guarded(e.breaker, func() (map[string]models.EngagementCounts, error) {
		return e.engagement.EngagementCounts(ctx, ids, at, trendingWindow)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch engagement: %w", err)
	}
	return counts, nil
}

// scoreCandidates scores every candidate on a bounded worker pool.
// Results are written by index, so the output keeps candidate order.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) scoreCandidates(
	pref *models.UserPreference,
	rc Context,
	candidates []Candidate,
	curators map[string][]models.CuratorEndorsement,
	engagement map[string]models.EngagementCounts,
) []ScoredRecommendation {
	results := make([]ScoredRecommendation, len(candidates))
	workers := min(e.config.Workers, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.scoreOne(pref, rc, candidates[i], curators, engagement)
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) scoreOne(
	pref *models.UserPreference,
	rc Context,
	c Candidate,
	curators map[string][]models.CuratorEndorsement,
	engagement map[string]models.EngagementCounts,
) ScoredRecommendation {
	in := Input{
		Restaurant: c.Restaurant,
		Preference: pref,
		At:         rc.CurrentTime,
		Companion:  rc.Companion,
		DistanceKm: c.DistanceKm,
		Curators:   curators[c.Restaurant.ID],
		Lookup:     e.catalog.Get,
	}
	if counts, ok := engagement[c.Restaurant.ID]; ok {
		in.Engagement = &counts
	}

	total, breakdown := e.scorer.Score(&in)
	return ScoredRecommendation{
		Restaurant: c.Restaurant,
		TotalScore: total,
		Breakdown:  breakdown,
		Distance:   c.DistanceKm,
	}
}

//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) logResult(userID string, rc Context, result *Result) {
	if e.recLog == nil {
		return
	}
	entry := &LogEntry{
		UserID:   userID,
		Context:  rc,
		Fallback: result.Fallback,
		Results:  make([]LogResult, len(result.Recommendations)),
	}
	for i, r := range result.Recommendations {
		entry.Results[i] = LogResult{
			RestaurantID: r.Restaurant.ID,
			TotalScore:   r.TotalScore,
			Breakdown:    r.Breakdown,
		}
	}
	e.recLog.Log(entry)
}

// Catalog returns the engine's restaurant catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// BreakerState reports the dependency breaker state for health checks.
func (e *Engine) BreakerState() string {
	return e.breaker.State().String()
}
