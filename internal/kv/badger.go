// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
)

// badgerGCInterval is how often the value log is garbage collected.
const badgerGCInterval = 10 * time.Minute

// BadgerStore is a persistent Store on BadgerDB.
//
// Update runs inside a serializable read-write transaction and is retried
// when badger reports a conflict with a concurrent transaction.
type BadgerStore struct {
	db *badger.DB

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}

	logging.Info().Str("path", path).Msg("Opened badger key-value store")
	return NewBadgerStore(db, badgerGCInterval), nil
}

// NewBadgerStore wraps an open database. The store takes ownership of db.
// A gcInterval <= 0 disables value log garbage collection.
func NewBadgerStore(db *badger.DB, gcInterval time.Duration) *BadgerStore {
	s := &BadgerStore{
		db:     db,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if gcInterval > 0 && !db.Opts().InMemory {
		go s.gcLoop(gcInterval)
	} else {
		close(s.doneCh)
	}
	return s
}

// Get returns the value stored under key.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	defer s.observe("get", time.Now())

	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("badger get %s: %w", key, err)
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores value under key.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	defer s.observe("set", time.Now())

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newEntry(key, value, ttl))
	})
}

// Delete removes key.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	defer s.observe("delete", time.Now())

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("badger delete %s: %w", key, err)
		}
		return nil
	})
}

// Update performs a transactional read-modify-write of key.
func (s *BadgerStore) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	defer s.observe("update", time.Now())

	txf := func(txn *badger.Txn) error {
		var old []byte
		exists := true

		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			exists = false
		case err != nil:
			return fmt.Errorf("badger get %s: %w", key, err)
		default:
			if old, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}

		next, err := fn(old, exists)
		if err != nil {
			return err
		}
		if next == nil {
			if !exists {
				return nil
			}
			return txn.Delete([]byte(key))
		}
		return txn.SetEntry(newEntry(key, next, ttl))
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(txf)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		metrics.KVUpdateConflicts.WithLabelValues("badger").Inc()
	}
	return fmt.Errorf("badger update %s: %w", key, ErrConflict)
}

// Close stops garbage collection and closes the database.
func (s *BadgerStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *BadgerStore) gcLoop(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// RunValueLogGC returns an error once there is nothing left to rewrite
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		}
	}
}

func (s *BadgerStore) observe(op string, start time.Time) {
	metrics.RecordKVOperation("badger", op, time.Since(start))
}

func newEntry(key string, value []byte, ttl time.Duration) *badger.Entry {
	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e
}
