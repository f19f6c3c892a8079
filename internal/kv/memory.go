// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package kv

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tomtom215/tablemap/internal/metrics"
)

// DefaultSweepInterval is how often the memory store purges expired keys.
const DefaultSweepInterval = time.Minute

const memoryStripes = 256

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// MemoryStore is a process-local Store.
//
// Writers to the same key are serialized by one of 256 striped mutexes chosen
// by FNV hash; the map itself is guarded by an RWMutex. Expired entries are
// hidden on read and purged by a background sweep.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem

	stripes [memoryStripes]sync.Mutex

	now func() time.Time

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a MemoryStore. A sweepInterval <= 0 disables the
// background sweep; expired keys are then only hidden, not reclaimed.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		items:  make(map[string]memoryItem),
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	} else {
		close(s.doneCh)
	}
	return s
}

func (s *MemoryStore) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.stripes[h.Sum32()%memoryStripes]
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	defer s.observe("get", time.Now())

	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || item.expired(s.now()) {
		return nil, ErrNotFound
	}
	return cloneBytes(item.value), nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	defer s.observe("set", time.Now())

	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	s.items[key] = memoryItem{value: cloneBytes(value), expiresAt: s.expiry(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	defer s.observe("delete", time.Now())

	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Update runs fn under the key's stripe lock and stores its result.
func (s *MemoryStore) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	defer s.observe("update", time.Now())

	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	item, exists := s.items[key]
	s.mu.RUnlock()

	var old []byte
	if exists && item.expired(s.now()) {
		exists = false
	}
	if exists {
		old = cloneBytes(item.value)
	}

	next, err := fn(old, exists)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if next == nil {
		delete(s.items, key)
	} else {
		s.items[key] = memoryItem{value: cloneBytes(next), expiresAt: s.expiry(ttl)}
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys including not-yet-swept expired ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, item := range s.items {
		if item.expired(now) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
	return nil
}

func (s *MemoryStore) observe(op string, start time.Time) {
	metrics.RecordKVOperation("memory", op, time.Since(start))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
