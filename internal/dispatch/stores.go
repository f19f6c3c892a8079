// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/ratelimit"
)

// The dispatcher reaches storage, presence and transport through these
// interfaces. internal/database, internal/registry, internal/ratelimit and
// internal/websocket provide the production implementations.

// ChatStore reads chat membership. Unknown chats return ErrNotFound.
type ChatStore interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error)
}

// MessageStore persists chat messages and read markers.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	History(ctx context.Context, chatID string, before time.Time, limit int) ([]models.Message, error)
	UnreadMessageIDs(ctx context.Context, chatID, userID string, limit int) ([]string, error)
	MarkMessagesRead(ctx context.Context, userID string, messageIDs []string, at time.Time) error
}

// NotificationStore persists notifications. MarkNotificationRead must leave
// an already-read notification unchanged.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadNotificationCount(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (int, error)
}

// Store is everything the dispatcher persists.
type Store interface {
	ChatStore
	MessageStore
	NotificationStore
}

// UserDirectory resolves display names. Unknown users return ErrNotFound.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// RestaurantLookup resolves restaurant attachments.
type RestaurantLookup interface {
	Get(id string) (*models.Restaurant, bool)
}

// Presence is the connection registry.
type Presence interface {
	Register(ctx context.Context, userID, channelID string) (wasOnline bool, err error)
	Unregister(ctx context.Context, channelID string) (userID string, wentOffline bool, err error)
	Lookup(ctx context.Context, userID string) (channelID string, ok bool, err error)
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// RateLimiter checks and records one send.
type RateLimiter interface {
	Allow(ctx context.Context, userID string) (ratelimit.Decision, error)
}

// Pusher delivers events to connected channels.
type Pusher interface {
	// PushToUser delivers to the user's current channel and reports
	// whether one existed.
	PushToUser(ctx context.Context, userID string, event Event) bool
	// PushToRoom delivers to every channel joined to the chat's room.
	PushToRoom(ctx context.Context, chatID string, event Event)
}
