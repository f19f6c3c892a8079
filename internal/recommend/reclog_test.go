// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"sync"
	"testing"
	"time"
)

// gatedLogStore blocks every write until release is closed.
type gatedLogStore struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once

	mu    sync.Mutex
	saved []string
}

func newGatedLogStore() *gatedLogStore {
	return &gatedLogStore{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedLogStore) SaveRecommendationLog(_ context.Context, entry *LogEntry) error {
	s.startOnce.Do(func() { close(s.started) })
	<-s.release

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, entry.UserID)
	return nil
}

func (s *gatedLogStore) savedUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

func TestRecLogger_DropsWhenFull(t *testing.T) {
	t.Parallel()

	store := newGatedLogStore()
	l := NewRecLogger(store, 1)

	l.Log(&LogEntry{UserID: "first"})
	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("writer never picked up the first entry")
	}

	// Writer is blocked on "first": one slot for "second", "third" is dropped
	l.Log(&LogEntry{UserID: "second"})
	l.Log(&LogEntry{UserID: "third"})

	close(store.release)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := store.savedUsers(); !equalIDs(got, []string{"first", "second"}) {
		t.Errorf("saved = %v, want [first second]", got)
	}
}

func TestRecLogger_CloseDrains(t *testing.T) {
	t.Parallel()

	store := &recordingLogStore{}
	l := NewRecLogger(store, 16)

	for i := 0; i < 10; i++ {
		l.Log(&LogEntry{UserID: "u"})
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	entries := store.saved()
	if len(entries) != 10 {
		t.Fatalf("saved %d entries, want 10", len(entries))
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.ID] {
			t.Errorf("duplicate entry ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestRecLogger_KeepsExplicitFields(t *testing.T) {
	t.Parallel()

	store := &recordingLogStore{}
	l := NewRecLogger(store, 0)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Log(&LogEntry{ID: "fixed", UserID: "u", CreatedAt: at})
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := store.saved()
	if len(entries) != 1 {
		t.Fatalf("saved %d entries, want 1", len(entries))
	}
	if entries[0].ID != "fixed" || !entries[0].CreatedAt.Equal(at) {
		t.Errorf("entry = %+v, want ID and CreatedAt unchanged", entries[0])
	}
}
