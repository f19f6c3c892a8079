// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/logging"
)

const (
	userKeyPrefix    = "conn:user:"
	channelKeyPrefix = "conn:chan:"
)

// errSkip aborts an update that must leave the key untouched.
var errSkip = errors.New("registry: skip")

// Registry maps each user to their single live channel and back.
//
// A second Register for the same user supersedes the first: the old channel
// stays open but is no longer addressable through the registry, and a later
// Unregister of the old channel does not disturb the new mapping.
type Registry struct {
	store kv.Store
	ttl   time.Duration
}

// New creates a Registry over store. Entries expire after ttl unless
// refreshed with Touch; ttl 0 disables expiry.
func New(store kv.Store, ttl time.Duration) *Registry {
	return &Registry{store: store, ttl: ttl}
}

// Register maps userID to channelID, replacing any prior channel.
//
// wasOnline reports whether the user already had a registered channel, so
// callers can announce presence only on an offline to online transition.
func (r *Registry) Register(ctx context.Context, userID, channelID string) (wasOnline bool, err error) {
	var previous string

	err = r.store.Update(ctx, userKeyPrefix+userID, r.ttl, func(old []byte, exists bool) ([]byte, error) {
		previous = ""
		if exists {
			previous = string(old)
		}
		return []byte(channelID), nil
	})
	if err != nil {
		return false, fmt.Errorf("register user %s: %w", userID, err)
	}

	if err := r.store.Set(ctx, channelKeyPrefix+channelID, []byte(userID), r.ttl); err != nil {
		return previous != "", fmt.Errorf("register channel %s: %w", channelID, err)
	}

	if previous != "" && previous != channelID {
		if err := r.store.Delete(ctx, channelKeyPrefix+previous); err != nil {
			logging.Warn().Err(err).Str("channel_id", previous).Msg("Failed to drop superseded channel mapping")
		}
		logging.Debug().
			Str("user_id", userID).
			Str("channel_id", channelID).
			Str("superseded", previous).
			Msg("Connection superseded")
	}

	return previous != "", nil
}

// Unregister removes channelID. The user mapping is removed only if it still
// points at channelID; unregistering a stale or superseded channel leaves the
// user's current channel intact.
//
// userID is the owner of the channel and wentOffline reports whether the
// user no longer has any registered channel.
func (r *Registry) Unregister(ctx context.Context, channelID string) (userID string, wentOffline bool, err error) {
	raw, err := r.store.Get(ctx, channelKeyPrefix+channelID)
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup channel %s: %w", channelID, err)
	}
	userID = string(raw)

	err = r.store.Update(ctx, userKeyPrefix+userID, r.ttl, func(old []byte, exists bool) ([]byte, error) {
		wentOffline = false
		if !exists || string(old) != channelID {
			return nil, errSkip
		}
		wentOffline = true
		return nil, nil
	})
	if err != nil && !errors.Is(err, errSkip) {
		return userID, false, fmt.Errorf("unregister user %s: %w", userID, err)
	}

	if err := r.store.Delete(ctx, channelKeyPrefix+channelID); err != nil {
		return userID, wentOffline, fmt.Errorf("unregister channel %s: %w", channelID, err)
	}
	return userID, wentOffline, nil
}

// Lookup returns the user's current channel.
func (r *Registry) Lookup(ctx context.Context, userID string) (channelID string, ok bool, err error) {
	raw, err := r.store.Get(ctx, userKeyPrefix+userID)
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return string(raw), true, nil
}

// IsOnline reports whether the user has a registered channel.
func (r *Registry) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, ok, err := r.Lookup(ctx, userID)
	return ok, err
}

// IsCurrent reports whether channelID is the user's registered channel.
func (r *Registry) IsCurrent(ctx context.Context, userID, channelID string) (bool, error) {
	current, ok, err := r.Lookup(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return current == channelID, nil
}

// Touch extends the TTL of a live mapping. It is a no-op when channelID has
// been superseded or the mapping expired.
func (r *Registry) Touch(ctx context.Context, userID, channelID string) error {
	if r.ttl <= 0 {
		return nil
	}

	err := r.store.Update(ctx, userKeyPrefix+userID, r.ttl, func(old []byte, exists bool) ([]byte, error) {
		if !exists || string(old) != channelID {
			return nil, errSkip
		}
		return old, nil
	})
	if errors.Is(err, errSkip) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("touch user %s: %w", userID, err)
	}
	return r.store.Set(ctx, channelKeyPrefix+channelID, []byte(userID), r.ttl)
}
