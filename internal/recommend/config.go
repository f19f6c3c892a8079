// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/tomtom215/tablemap/internal/config"
)

// Weights defines the contribution of each signal to the total score.
// Unlike a normalized ensemble, the weights must already sum to 1.0 so that
// a breakdown in [0,100] always yields a total in [0,100].
type Weights struct {
	GamePreference    float64 `json:"gamePreference"`
	VisitHistory      float64 `json:"visitHistory"`
	FollowingCurators float64 `json:"followingCurators"`
	LikedPattern      float64 `json:"likedPattern"`
	SocialInfluence   float64 `json:"socialInfluence"`
	TimeContext       float64 `json:"timeContext"`
	CompanionContext  float64 `json:"companionContext"`
	SeasonalContext   float64 `json:"seasonalContext"`
	Trending          float64 `json:"trending"`
	Distance          float64 `json:"distance"`
}

// DefaultWeights returns the production signal weights.
func DefaultWeights() Weights {
	return Weights{
		GamePreference:    0.20,
		VisitHistory:      0.15,
		FollowingCurators: 0.15,
		LikedPattern:      0.10,
		SocialInfluence:   0.10,
		TimeContext:       0.10,
		CompanionContext:  0.08,
		SeasonalContext:   0.05,
		Trending:          0.05,
		Distance:          0.02,
	}
}

// WeightsFrom converts configured weights.
func WeightsFrom(w config.WeightsConfig) Weights {
	return Weights{
		GamePreference:    w.GamePreference,
		VisitHistory:      w.VisitHistory,
		FollowingCurators: w.FollowingCurators,
		LikedPattern:      w.LikedPattern,
		SocialInfluence:   w.SocialInfluence,
		TimeContext:       w.TimeContext,
		CompanionContext:  w.CompanionContext,
		SeasonalContext:   w.SeasonalContext,
		Trending:          w.Trending,
		Distance:          w.Distance,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.GamePreference + w.VisitHistory + w.FollowingCurators + w.LikedPattern +
		w.SocialInfluence + w.TimeContext + w.CompanionContext + w.SeasonalContext +
		w.Trending + w.Distance
}

// Apply returns the weighted total of a breakdown.
func (w Weights) Apply(b *Breakdown) float64 {
	return b.GamePreference*w.GamePreference +
		b.VisitHistory*w.VisitHistory +
		b.FollowingCurators*w.FollowingCurators +
		b.LikedPattern*w.LikedPattern +
		b.SocialInfluence*w.SocialInfluence +
		b.TimeContext*w.TimeContext +
		b.CompanionContext*w.CompanionContext +
		b.SeasonalContext*w.SeasonalContext +
		b.Trending*w.Trending +
		b.Distance*w.Distance
}

// Validate requires non-negative weights summing to 1.0.
func (w Weights) Validate() error {
	for s := Signal(0); s < numSignals; s++ {
		if w.get(s) < 0 {
			return fmt.Errorf("weight %s must not be negative", s)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

func (w Weights) get(s Signal) float64 {
	b := Breakdown(w)
	return b.Get(s)
}

// Config contains operational settings for the recommendation engine.
type Config struct {
	Weights Weights

	// DefaultLimit applies when a request asks for zero results.
	DefaultLimit int
	// MaxLimit caps every request.
	MaxLimit int

	// MaxCandidates bounds the number of restaurants scored per request.
	MaxCandidates int
	// MaxRadiusKm restricts candidates when the request has a location.
	MaxRadiusKm float64

	// Workers is the scoring pool size.
	Workers int
	// Timeout fails a request that has not finished in time.
	Timeout time.Duration

	Breaker BreakerConfig
}

// BreakerConfig mirrors gobreaker.Settings for the dependency breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:       DefaultWeights(),
		DefaultLimit:  20,
		MaxLimit:      100,
		MaxCandidates: 100,
		MaxRadiusKm:   5,
		Workers:       runtime.NumCPU(),
		Timeout:       10 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// ConfigFrom builds a Config from application configuration.
func ConfigFrom(rc config.RecommendConfig) *Config {
	cfg := &Config{
		Weights:       WeightsFrom(rc.Weights),
		DefaultLimit:  rc.DefaultLimit,
		MaxLimit:      rc.MaxLimit,
		MaxCandidates: rc.MaxCandidates,
		MaxRadiusKm:   rc.MaxRadiusKm,
		Workers:       rc.Workers,
		Timeout:       rc.Timeout,
		Breaker: BreakerConfig{
			MaxRequests:      rc.Breaker.MaxRequests,
			Interval:         rc.Breaker.Interval,
			Timeout:          rc.Breaker.Timeout,
			FailureThreshold: rc.Breaker.FailureThreshold,
		},
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.DefaultLimit < 1 || c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("limits: default %d must be positive and at most max %d", c.DefaultLimit, c.MaxLimit)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be positive")
	}
	if c.MaxRadiusKm <= 0 {
		return fmt.Errorf("max radius must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
