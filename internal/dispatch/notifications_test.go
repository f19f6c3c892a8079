// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

func followRequest(recipient string) CreateNotificationRequest {
	return CreateNotificationRequest{
		RecipientID: recipient,
		SenderID:    "alice",
		Type:        models.NotificationFollow,
		Message:     "Alice followed you",
		RelatedID:   "alice",
		RelatedType: "user",
	}
}

func TestCreateNotification_Offline(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	n, pushed, err := h.d.CreateNotification(ctx, followRequest("bob"))
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if pushed {
		t.Error("offline recipient reported as pushed")
	}
	if n.Read || n.ID == "" {
		t.Errorf("notification = %+v, want unread with ID", n)
	}
	if n.Sender == nil || n.Sender.Username != "Alice" {
		t.Errorf("Sender = %+v, want Alice", n.Sender)
	}

	if online, _ := h.d.IsOnline(ctx, "bob"); online {
		t.Error("bob should be offline")
	}
	list, err := h.d.ListNotifications(ctx, "bob", true, 0)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != n.ID || list[0].Read {
		t.Errorf("ListNotifications() = %+v, want the unread notification", list)
	}
	if list[0].Sender == nil || list[0].Sender.ID != "alice" {
		t.Errorf("listed Sender = %+v, want populated", list[0].Sender)
	}
}

func TestCreateNotification_Online(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.d.Connect(ctx, "bob", "ch-bob"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	n, pushed, err := h.d.CreateNotification(ctx, followRequest("bob"))
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if !pushed {
		t.Error("online recipient should be pushed")
	}
	events := h.pusher.userEvents("bob", EventNewNotification)
	if len(events) != 1 {
		t.Fatalf("bob got %d notification events, want 1", len(events))
	}
	if got := events[0].Data.(*models.Notification); got.ID != n.ID || got.Sender == nil {
		t.Errorf("pushed %+v", got)
	}
}

func TestCreateNotification_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateNotificationRequest)
	}{
		{"no recipient", func(r *CreateNotificationRequest) { r.RecipientID = "" }},
		{"unknown type", func(r *CreateNotificationRequest) { r.Type = "poke" }},
		{"no message", func(r *CreateNotificationRequest) { r.Message = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			req := followRequest("bob")
			tt.mutate(&req)
			if _, _, err := h.d.CreateNotification(context.Background(), req); !IsKind(err, KindGeneric) {
				t.Errorf("CreateNotification() error = %v, want generic", err)
			}
		})
	}
}

func TestMarkNotificationRead(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	n, _, err := h.d.CreateNotification(ctx, followRequest("bob"))
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	h.clock.Advance(time.Minute)
	if err := h.d.MarkNotificationRead(ctx, "bob", n.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	first, _ := h.store.GetNotification(ctx, n.ID)

	// Idempotent: no error, no state change
	h.clock.Advance(time.Minute)
	if err := h.d.MarkNotificationRead(ctx, "bob", n.ID); err != nil {
		t.Fatalf("second MarkNotificationRead() error = %v", err)
	}
	second, _ := h.store.GetNotification(ctx, n.ID)
	if !second.Read || second.ReadAt == nil || !second.ReadAt.Equal(*first.ReadAt) {
		t.Errorf("re-mark changed state: first %v, second %v", first.ReadAt, second.ReadAt)
	}

	if err := h.d.MarkNotificationRead(ctx, "alice", n.ID); !IsKind(err, KindAuthorization) {
		t.Errorf("other user's mark error = %v, want authorization", err)
	}
	if err := h.d.MarkNotificationRead(ctx, "bob", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := h.d.CreateNotification(ctx, followRequest("bob")); err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
	}
	if _, _, err := h.d.CreateNotification(ctx, followRequest("carol")); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	if count, _ := h.d.UnreadNotificationCount(ctx, "bob"); count != 3 {
		t.Fatalf("UnreadNotificationCount() = %d, want 3", count)
	}
	changed, err := h.d.MarkAllNotificationsRead(ctx, "bob")
	if err != nil || changed != 3 {
		t.Errorf("MarkAllNotificationsRead() = %d, %v, want 3", changed, err)
	}
	if count, _ := h.d.UnreadNotificationCount(ctx, "bob"); count != 0 {
		t.Errorf("UnreadNotificationCount() after = %d, want 0", count)
	}
	if count, _ := h.d.UnreadNotificationCount(ctx, "carol"); count != 1 {
		t.Errorf("carol's unread = %d, want 1", count)
	}

	list, err := h.d.ListNotifications(ctx, "bob", false, 2)
	if err != nil || len(list) != 2 {
		t.Errorf("ListNotifications(limit 2) = %d, %v", len(list), err)
	}
}
