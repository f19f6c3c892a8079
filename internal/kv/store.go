// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/tablemap/internal/config"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("kv: key not found")

	// ErrConflict is returned by Update when optimistic retries are exhausted.
	ErrConflict = errors.New("kv: too many concurrent updates")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("kv: store closed")
)

// UpdateFunc computes the next value of a key from its current value.
//
// exists is false when the key is absent. Returning nil bytes deletes the key.
// An error aborts the update and is returned from Update unchanged. The
// function may run more than once when a backend retries after a conflict,
// so it must not have side effects.
type UpdateFunc func(old []byte, exists bool) ([]byte, error)

// Store is a small per-key state store with TTLs and atomic read-modify-write.
//
// Implementations serialize concurrent Update calls on the same key, so
// check-and-record sequences built on Update cannot interleave.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
	Close() error
}

// maxUpdateRetries bounds optimistic retries in the redis and badger backends.
const maxUpdateRetries = 64

// Open creates the Store selected by cfg.
//
// namespace prefixes every key so that several stores can share one redis
// database. rdb is required for the redis backend and ignored otherwise.
func Open(cfg config.StoreConfig, rdb *redis.Client, namespace string) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(DefaultSweepInterval), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("kv: redis backend selected without a redis client")
		}
		return NewRedisStore(rdb, namespace), nil
	case "badger":
		return OpenBadgerStore(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", cfg.Backend)
	}
}
