// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package ratelimit implements the per-user sliding-window send limit.
//
// Each user has a log of recent send timestamps in a kv.Store. A send is
// allowed when fewer than Max timestamps fall inside the trailing Window; the
// check and the append happen in one kv.Store.Update, so two near-simultaneous
// sends from the same user cannot both pass. Rejected sends are not recorded.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/kv"
)

const keyPrefix = "rate:"

// errLimited aborts the store update without writing.
var errLimited = errors.New("rate limited")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Remaining is how many more sends fit in the current window.
	Remaining int
	// RetryAfter is how long until the oldest send leaves the window.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter is a sliding-log rate limiter keyed by user ID.
type Limiter struct {
	store  kv.Store
	max    int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter allowing cfg.Max sends per cfg.Window.
func New(store kv.Store, cfg config.RateLimitConfig, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		max:    cfg.Max,
		window: cfg.Window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow checks the user's window and records the send if allowed.
func (l *Limiter) Allow(ctx context.Context, userID string) (Decision, error) {
	var decision Decision

	err := l.store.Update(ctx, keyPrefix+userID, l.window, func(old []byte, exists bool) ([]byte, error) {
		now := l.now()
		stamps, err := l.decode(old, exists)
		if err != nil {
			return nil, err
		}

		live := prune(stamps, now.Add(-l.window).UnixNano())
		if len(live) >= l.max {
			decision = Decision{
				Allowed:    false,
				Remaining:  0,
				RetryAfter: time.Duration(live[0]) + l.window - time.Duration(now.UnixNano()),
			}
			return nil, errLimited
		}

		live = append(live, now.UnixNano())
		decision = Decision{Allowed: true, Remaining: l.max - len(live)}
		return json.Marshal(live)
	})

	if errors.Is(err, errLimited) {
		return decision, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check for %s: %w", userID, err)
	}
	return decision, nil
}

// Reset forgets the user's send history.
func (l *Limiter) Reset(ctx context.Context, userID string) error {
	return l.store.Delete(ctx, keyPrefix+userID)
}

func (l *Limiter) decode(old []byte, exists bool) ([]int64, error) {
	if !exists || len(old) == 0 {
		return nil, nil
	}
	var stamps []int64
	if err := json.Unmarshal(old, &stamps); err != nil {
		return nil, fmt.Errorf("decode send log: %w", err)
	}
	return stamps, nil
}

// prune drops timestamps at or before cutoff. Input is ascending.
func prune(stamps []int64, cutoff int64) []int64 {
	i := 0
	for i < len(stamps) && stamps[i] <= cutoff {
		i++
	}
	return stamps[i:]
}
