// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/ratelimit"
	"github.com/tomtom215/tablemap/internal/registry"
)

// memStore is an in-memory Store with the same ordering rules as the
// DuckDB implementation.
type memStore struct {
	mu            sync.Mutex
	chats         map[string]*models.Chat
	messages      []*models.Message
	notifications []*models.Notification
	failCreate    error
}

func newMemStore(chats ...*models.Chat) *memStore {
	s := &memStore{chats: make(map[string]*models.Chat)}
	for _, c := range chats {
		s.chats[c.ID] = c
	}
	return s
}

func (s *memStore) GetChat(_ context.Context, chatID string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ChatsForUser(_ context.Context, userID string) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Chat
	for _, c := range s.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	cp := *msg
	cp.ReadBy = append([]models.ReadMarker(nil), msg.ReadBy...)
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memStore) History(_ context.Context, chatID string, before time.Time, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var page []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID && (before.IsZero() || m.CreatedAt.Before(before)) {
			page = append(page, *m)
		}
	}
	if len(page) > limit {
		page = page[len(page)-limit:]
	}
	return page, nil
}

func (s *memStore) UnreadMessageIDs(_ context.Context, chatID, userID string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, m := range s.messages {
		if len(ids) == limit {
			break
		}
		if m.ChatID == chatID && !m.IsReadBy(userID) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (s *memStore) MarkMessagesRead(_ context.Context, userID string, messageIDs []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		want[id] = true
	}
	for _, m := range s.messages {
		if want[m.ID] && !m.IsReadBy(userID) {
			m.ReadBy = append(m.ReadBy, models.ReadMarker{UserID: userID, ReadAt: at})
		}
	}
	return nil
}

func (s *memStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.notifications = append(s.notifications, &cp)
	return nil
}

func (s *memStore) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
}

func (s *memStore) ListNotifications(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for i := len(s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := s.notifications[i]
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *memStore) UnreadNotificationCount(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *memStore) MarkNotificationRead(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id && !n.Read {
			n.Read = true
			readAt := at
			n.ReadAt = &readAt
		}
	}
	return nil
}

func (s *memStore) MarkAllNotificationsRead(_ context.Context, recipientID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			readAt := at
			n.ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

type userMap map[string]*models.User

func (u userMap) GetUser(_ context.Context, id string) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

type restaurantMap map[string]*models.Restaurant

func (r restaurantMap) Get(id string) (*models.Restaurant, bool) {
	rest, ok := r[id]
	return rest, ok
}

type pushed struct {
	target string
	event  Event
}

// recordingPusher records pushes. PushToUser succeeds for users the
// registry reports online.
type recordingPusher struct {
	mu       sync.Mutex
	registry *registry.Registry
	users    []pushed
	rooms    []pushed
}

func (p *recordingPusher) PushToUser(ctx context.Context, userID string, event Event) bool {
	online, _ := p.registry.IsOnline(ctx, userID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if online {
		p.users = append(p.users, pushed{target: userID, event: event})
	}
	return online
}

func (p *recordingPusher) PushToRoom(_ context.Context, chatID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms = append(p.rooms, pushed{target: chatID, event: event})
}

func (p *recordingPusher) userEvents(userID, eventType string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.users {
		if e.target == userID && e.event.Type == eventType {
			out = append(out, e.event)
		}
	}
	return out
}

func (p *recordingPusher) roomEvents(chatID, eventType string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.rooms {
		if e.target == chatID && e.event.Type == eventType {
			out = append(out, e.event)
		}
	}
	return out
}

// fakeClock is a settable time source shared by the limiter and dispatcher
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	d        *Dispatcher
	store    *memStore
	registry *registry.Registry
	pusher   *recordingPusher
	clock    *fakeClock
}

// 2026-07-15 03:00 UTC is 12:00 in Seoul
var testNow = time.Date(2026, 7, 15, 3, 0, 0, 0, time.UTC)

func testChat() *models.Chat {
	return &models.Chat{ID: "chat-1", Name: "lunch", Participants: []string{"alice", "bob"}}
}

func newHarness(t *testing.T, chats ...*models.Chat) *harness {
	t.Helper()
	return newHarnessWithLogger(t, zerolog.Nop(), chats...)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newHarnessWithLogger(t *testing.T, logger zerolog.Logger, chats ...*models.Chat) *harness {
	t.Helper()

	if len(chats) == 0 {
		chats = []*models.Chat{testChat()}
	}
	state := kv.NewMemoryStore(0)
	t.Cleanup(func() { _ = state.Close() })

	clock := &fakeClock{now: testNow}
	reg := registry.New(state, 0)
	limiter := ratelimit.New(state, config.RateLimitConfig{Max: 5, Window: time.Second}, ratelimit.WithClock(clock.Now))
	store := newMemStore(chats...)
	pusher := &recordingPusher{registry: reg}

	users := userMap{
		"alice": {ID: "alice", Username: "Alice", ProfileImage: "alice.png"},
		"bob":   {ID: "bob", Username: "Bob"},
	}
	restaurants := restaurantMap{
		"r1": {ID: "r1", Name: "Gogi House", Category: models.CategoryKorean},
	}

	d, err := New(DefaultConfig(), Deps{
		Store:    store,
		Users:    users,
		Presence: reg,
		Limiter:  limiter,
		Pusher:   pusher,
	}, logger, WithClock(clock.Now), WithRestaurants(restaurants))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	return &harness{d: d, store: store, registry: reg, pusher: pusher, clock: clock}
}
