// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/models"
)

const keyPrefix = "pref:"

// ErrNotFound is returned by Get when the user has no preference record yet.
var ErrNotFound = errors.New("preference: not found")

// MutateFunc edits a preference record in place.
type MutateFunc func(p *models.UserPreference) error

// Store persists one UserPreference per user as JSON in a kv.Store.
//
// Records are created on the first interaction and mutated incrementally;
// they are never deleted. Every mutation is a single kv.Store.Update, so two
// concurrent likes for the same user both land.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt/UpdatedAt and
// default event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a preference Store over store.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the user's preference record, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (*models.UserPreference, error) {
	data, err := s.kv.Get(ctx, keyPrefix+userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}

	var pref models.UserPreference
	if err := json.Unmarshal(data, &pref); err != nil {
		return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
	}
	return &pref, nil
}

// Modify applies fn to the user's record, creating an empty record first if
// none exists, and returns the stored result.
func (s *Store) Modify(ctx context.Context, userID string, fn MutateFunc) (*models.UserPreference, error) {
	var result models.UserPreference

	err := s.kv.Update(ctx, keyPrefix+userID, 0, func(old []byte, exists bool) ([]byte, error) {
		now := s.now().UTC()
		pref := models.UserPreference{UserID: userID, CreatedAt: now}
		if exists {
			pref = models.UserPreference{}
			if err := json.Unmarshal(old, &pref); err != nil {
				return nil, fmt.Errorf("decode: %w", err)
			}
		}

		if err := fn(&pref); err != nil {
			return nil, err
		}
		pref.UpdatedAt = now

		data, err := json.Marshal(&pref)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		result = pref
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update preferences for %s: %w", userID, err)
	}
	return &result, nil
}

// RecordVisit appends a visit. VisitedAt defaults to now.
func (s *Store) RecordVisit(ctx context.Context, userID string, visit models.Visit) (*models.UserPreference, error) {
	if visit.RestaurantID == "" {
		return nil, fmt.Errorf("record visit: restaurant id is required")
	}
	if visit.Rating < 0 || visit.Rating > 5 {
		return nil, fmt.Errorf("record visit: rating %.1f out of range 0-5", visit.Rating)
	}
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = s.now().UTC()
	}

	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		p.Visits = append(p.Visits, visit)
		return nil
	})
}

// Like records a like. Liking the same restaurant again replaces its strength.
func (s *Store) Like(ctx context.Context, userID, restaurantID string, strength float64) (*models.UserPreference, error) {
	if restaurantID == "" {
		return nil, fmt.Errorf("like: restaurant id is required")
	}
	if strength <= 0 {
		strength = 1
	}
	likedAt := s.now().UTC()

	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		for i := range p.Likes {
			if p.Likes[i].RestaurantID == restaurantID {
				p.Likes[i].Strength = strength
				p.Likes[i].LikedAt = likedAt
				return nil
			}
		}
		p.Likes = append(p.Likes, models.Like{RestaurantID: restaurantID, Strength: strength, LikedAt: likedAt})
		return nil
	})
}

// Follow records a curator follow. Following the same curator again replaces
// the trust score and type.
func (s *Store) Follow(ctx context.Context, userID string, follow models.Follow) (*models.UserPreference, error) {
	if follow.CuratorID == "" {
		return nil, fmt.Errorf("follow: curator id is required")
	}
	if follow.TrustScore < 0 || follow.TrustScore > 100 {
		return nil, fmt.Errorf("follow: trust score %.1f out of range 0-100", follow.TrustScore)
	}
	if follow.FollowedAt.IsZero() {
		follow.FollowedAt = s.now().UTC()
	}

	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		for i := range p.Following {
			if p.Following[i].CuratorID == follow.CuratorID {
				p.Following[i] = follow
				return nil
			}
		}
		p.Following = append(p.Following, follow)
		return nil
	})
}

// RecordGroupVisit appends a group visit with its satisfaction rating (1-5).
func (s *Store) RecordGroupVisit(ctx context.Context, userID string, visit models.GroupVisit) (*models.UserPreference, error) {
	if visit.RestaurantID == "" {
		return nil, fmt.Errorf("record group visit: restaurant id is required")
	}
	if visit.Satisfaction < 1 || visit.Satisfaction > 5 {
		return nil, fmt.Errorf("record group visit: satisfaction %d out of range 1-5", visit.Satisfaction)
	}
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = s.now().UTC()
	}

	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		p.Social.GroupVisits = append(p.Social.GroupVisits, visit)
		return nil
	})
}

// Block adds restaurantID to the user's block list. Blocking twice is a no-op.
func (s *Store) Block(ctx context.Context, userID, restaurantID string) (*models.UserPreference, error) {
	if restaurantID == "" {
		return nil, fmt.Errorf("block: restaurant id is required")
	}
	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		if !p.IsBlocked(restaurantID) {
			p.Negative.BlockedRestaurants = append(p.Negative.BlockedRestaurants, restaurantID)
		}
		return nil
	})
}

// Unblock removes restaurantID from the user's block list.
func (s *Store) Unblock(ctx context.Context, userID, restaurantID string) (*models.UserPreference, error) {
	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		kept := p.Negative.BlockedRestaurants[:0]
		for _, id := range p.Negative.BlockedRestaurants {
			if id != restaurantID {
				kept = append(kept, id)
			}
		}
		p.Negative.BlockedRestaurants = kept
		return nil
	})
}

// SetGameWeights replaces the weights learned from the onboarding game.
func (s *Store) SetGameWeights(ctx context.Context, userID string, weights models.GameWeights) (*models.UserPreference, error) {
	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		p.GameWeights = weights
		return nil
	})
}

// ContextPreferences are the situational preferences a user sets directly.
// Nil maps leave the stored value unchanged.
type ContextPreferences struct {
	TimePreferences map[models.MealTime]bool
	Companions      map[models.Companion]models.CompanionPreference
	Seasons         map[models.Season]models.SeasonPreference
}

// SetContextPreferences replaces the meal time, companion and season preferences.
func (s *Store) SetContextPreferences(ctx context.Context, userID string, cp ContextPreferences) (*models.UserPreference, error) {
	return s.Modify(ctx, userID, func(p *models.UserPreference) error {
		if cp.TimePreferences != nil {
			p.TimePreferences = cp.TimePreferences
		}
		if cp.Companions != nil {
			p.Companions = cp.Companions
		}
		if cp.Seasons != nil {
			p.Seasons = cp.Seasons
		}
		return nil
	})
}
