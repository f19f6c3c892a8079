// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/logging"
)

// StoreComponents holds the key-value stores and the shared redis client.
type StoreComponents struct {
	State       kv.Store
	Preferences kv.Store
	Redis       *redis.Client
}

// initStores opens the state store (connection registry and rate limit
// windows) and the preference store. A redis client is created only when
// one of them uses the redis backend and is shared between both.
func initStores(cfg *config.Config) (*StoreComponents, error) {
	sc := &StoreComponents{}

	if cfg.UsesRedis() {
		rdb, err := kv.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		sc.Redis = rdb
	}

	state, err := kv.Open(cfg.State, sc.Redis, "state")
	if err != nil {
		sc.Close()
		return nil, fmt.Errorf("state store: %w", err)
	}
	sc.State = state

	prefs, err := kv.Open(cfg.Preferences, sc.Redis, "prefs")
	if err != nil {
		sc.Close()
		return nil, fmt.Errorf("preference store: %w", err)
	}
	sc.Preferences = prefs

	logging.Info().
		Str("state_backend", cfg.State.Backend).
		Str("preferences_backend", cfg.Preferences.Backend).
		Msg("Key-value stores opened")
	return sc, nil
}

// Close closes the stores, then the redis client.
func (sc *StoreComponents) Close() {
	if sc.Preferences != nil {
		if err := sc.Preferences.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close preference store")
		}
	}
	if sc.State != nil {
		if err := sc.State.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close state store")
		}
	}
	if sc.Redis != nil {
		if err := sc.Redis.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}
