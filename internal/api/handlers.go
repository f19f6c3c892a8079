// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
	"github.com/tomtom215/tablemap/internal/recommend"
)

// Recommender is satisfied by *recommend.Engine.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID string, rc recommend.Context, limit int) (*recommend.Result, error)
	BreakerState() string
}

// Catalog is satisfied by *recommend.Catalog.
type Catalog interface {
	Refresh(ctx context.Context) error
	Upsert(r models.Restaurant)
	Len() int
	LoadedAt() time.Time
}

// Preferences is satisfied by *preference.Store.
type Preferences interface {
	Get(ctx context.Context, userID string) (*models.UserPreference, error)
	SetGameWeights(ctx context.Context, userID string, weights models.GameWeights) (*models.UserPreference, error)
	SetContextPreferences(ctx context.Context, userID string, cp preference.ContextPreferences) (*models.UserPreference, error)
	RecordVisit(ctx context.Context, userID string, visit models.Visit) (*models.UserPreference, error)
	RecordGroupVisit(ctx context.Context, userID string, visit models.GroupVisit) (*models.UserPreference, error)
	Like(ctx context.Context, userID, restaurantID string, strength float64) (*models.UserPreference, error)
	Follow(ctx context.Context, userID string, follow models.Follow) (*models.UserPreference, error)
	Block(ctx context.Context, userID, restaurantID string) (*models.UserPreference, error)
	Unblock(ctx context.Context, userID, restaurantID string) (*models.UserPreference, error)
}

// Messenger is satisfied by *dispatch.Dispatcher.
type Messenger interface {
	SendMessage(ctx context.Context, req dispatch.SendMessageRequest) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, userID, chatID string) ([]string, error)
	History(ctx context.Context, userID, chatID string, before time.Time, limit int) ([]models.Message, error)
	CreateNotification(ctx context.Context, req dispatch.CreateNotificationRequest) (*models.Notification, bool, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadNotificationCount(ctx context.Context, userID string) (int, error)
	IsOnline(ctx context.Context, userID string) (bool, error)
	InvalidateUser(userID string)
}

// Store is the subset of *database.DB written directly by handlers.
type Store interface {
	Ping(ctx context.Context) error
	UpsertUser(ctx context.Context, u *models.User) error
	CreateChat(ctx context.Context, chat *models.Chat) error
	UpsertRestaurant(ctx context.Context, r *models.Restaurant) error
	UpsertEndorsement(ctx context.Context, e *models.CuratorEndorsement) error
	RecordEngagement(ctx context.Context, restaurantID string, kind models.EngagementKind, at time.Time) error
}

// ConnectionCounter reports sockets held by this process.
// Satisfied by *websocket.Hub.
type ConnectionCounter interface {
	GetClientCount() int
}

// Deps holds the collaborators of Handler. Connections may be nil.
type Deps struct {
	Recommender Recommender
	Catalog     Catalog
	Preferences Preferences
	Messenger   Messenger
	Store       Store
	Connections ConnectionCounter
	Version     string
	NodeID      string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: Response and request helpers
//   - handlers_health.go: Health probes
//   - handlers_recommend.go: Recommendations
//   - handlers_preferences.go: Preference writes and profile
//   - handlers_messaging.go: Chats, messages and presence
//   - handlers_notifications.go: Notification inbox
//   - handlers_admin.go: Catalog management
type Handler struct {
	deps      Deps
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a new API handler.
//
//nolint:gocritic // hugeParam: deps copied once at startup
func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
		now:       time.Now,
	}
}
