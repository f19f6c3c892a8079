// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/cache"
	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/models"
)

// Dispatcher validates, persists and delivers messages and notifications.
// It is safe for concurrent use.
type Dispatcher struct {
	config *Config
	logger zerolog.Logger

	store       Store
	users       UserDirectory
	presence    Presence
	limiter     RateLimiter
	pusher      Pusher
	restaurants RestaurantLookup

	userCache *cache.Cache
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRestaurants attaches restaurant data to restaurant-type messages.
func WithRestaurants(lookup RestaurantLookup) Option {
	return func(d *Dispatcher) { d.restaurants = lookup }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Deps are the required collaborators of a Dispatcher.
type Deps struct {
	Store    Store
	Users    UserDirectory
	Presence Presence
	Limiter  RateLimiter
	Pusher   Pusher
}

// New creates a Dispatcher. Call Close to stop the user cache janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, deps Deps, logger zerolog.Logger, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Store == nil || deps.Users == nil || deps.Presence == nil || deps.Limiter == nil || deps.Pusher == nil {
		return nil, fmt.Errorf("dispatch: store, users, presence, limiter and pusher are required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.UserCacheTTL <= 0 {
		cfg.UserCacheTTL = time.Minute
	}

	d := &Dispatcher{
		config:    cfg,
		logger:    logger.With().Str("component", "dispatch").Logger(),
		store:     deps.Store,
		users:     deps.Users,
		presence:  deps.Presence,
		limiter:   deps.Limiter,
		pusher:    deps.Pusher,
		userCache: cache.New(cfg.UserCacheTTL),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close releases the user cache.
func (d *Dispatcher) Close() error {
	d.userCache.Close()
	return nil
}

// timestamp returns now in UTC at storage precision
func (d *Dispatcher) timestamp() time.Time {
	return d.now().UTC().Truncate(time.Microsecond)
}

// requestLogger returns the dispatcher logger tagged with the request ID
// carried by ctx, if any.
func (d *Dispatcher) requestLogger(ctx context.Context) *zerolog.Logger {
	logCtx := d.logger.With()
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	logger := logCtx.Logger()
	return &logger
}

// userSummary resolves a user's display fields through the cache. Unknown
// users fall back to their ID as the name.
func (d *Dispatcher) userSummary(ctx context.Context, userID string) *models.UserSummary {
	v, err := d.userCache.GetOrLoad("user:"+userID, func() (any, error) {
		u, err := d.users.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return u.Summary(), nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			d.requestLogger(ctx).Warn().Err(err).Str("user_id", userID).Msg("User lookup failed, using ID as name")
		}
		return &models.UserSummary{ID: userID, Username: userID}
	}
	return v.(*models.UserSummary)
}

// InvalidateUser drops a cached summary after a profile change.
func (d *Dispatcher) InvalidateUser(userID string) {
	d.userCache.Delete("user:" + userID)
}

// reject pushes the error event to the sender and returns err unchanged.
func (d *Dispatcher) reject(ctx context.Context, userID string, err error) error {
	payload := ErrorPayload{Type: KindGeneric, Message: "request failed"}
	var de *Error
	if errors.As(err, &de) {
		payload = ErrorPayload{Type: de.Kind, Message: de.Message}
	}
	d.pusher.PushToUser(ctx, userID, Event{Type: EventError, Data: payload})
	return err
}

// authorizeChat returns the chat if userID participates in it. Unknown
// chats are reported as authorization failures.
func (d *Dispatcher) authorizeChat(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := d.store.GetChat(ctx, chatID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(KindAuthorization, "not a participant of this chat")
	}
	if err != nil {
		return nil, fmt.Errorf("load chat %s: %w", chatID, err)
	}
	if !chat.HasParticipant(userID) {
		return nil, newError(KindAuthorization, "not a participant of this chat")
	}
	return chat, nil
}

// CanJoin reports whether userID may join the chat's room.
func (d *Dispatcher) CanJoin(ctx context.Context, userID, chatID string) error {
	_, err := d.authorizeChat(ctx, userID, chatID)
	return err
}
