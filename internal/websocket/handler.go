// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
)

const (
	registerTimeout   = 5 * time.Second
	disconnectTimeout = 5 * time.Second
)

// Authenticator resolves the user of an upgrade request.
// Satisfied by *auth.Middleware.
type Authenticator interface {
	AuthenticateRequest(r *http.Request) (userID string, err error)
}

// Handler upgrades authenticated requests and wires each socket to the
// hub and the dispatcher.
type Handler struct {
	hub       *Hub
	messenger Messenger
	auth      Authenticator
	upgrader  websocket.Upgrader
	limits    ClientLimits
	logger    zerolog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAllowedOrigins restricts browser origins. Empty or "*" allows any.
func WithAllowedOrigins(origins []string) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = originChecker(origins)
	}
}

// WithClientLimits sets per-socket queue and inbound rate limits.
func WithClientLimits(limits ClientLimits) HandlerOption {
	return func(h *Handler) { h.limits = limits }
}

// NewHandler creates the upgrade handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(hub *Hub, messenger Messenger, auth Authenticator, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub:       hub,
		messenger: messenger,
		auth:      auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(nil),
		},
		logger: logger.With().Str("component", "websocket").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP authenticates, upgrades, registers the channel and joins the
// rooms of the user's chats before the pumps start, so no room event sent
// after the upgrade is missed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.AuthenticateRequest(r)
	if err != nil {
		metrics.WSErrors.WithLabelValues("unauthorized").Inc()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		h.logger.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	channelID := uuid.New().String()
	ctx := logging.ContextWithUserID(r.Context(), userID)
	ctx = logging.ContextWithChannelID(ctx, channelID)

	c := NewClient(ctx, h.hub, conn, userID, channelID, h.limits, h.logger)
	c.onFrame = h.handleFrame
	c.onClose = h.handleClose

	regCtx, cancel := context.WithTimeout(r.Context(), registerTimeout)
	defer cancel()
	if err := h.hub.Register(regCtx, c); err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("hub unavailable, refusing socket")
		c.writeClose(websocket.CloseTryAgainLater, "try again later")
		c.closeConn()
		c.cancel()
		return
	}

	chatIDs, err := h.messenger.Connect(c.Context(), userID, channelID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to connect channel")
		metrics.WSErrors.WithLabelValues("connect").Inc()
		c.writeClose(websocket.CloseInternalServerErr, "connect failed")
		h.hub.Unregister(c)
		c.closeConn()
		h.handleClose(c)
		c.cancel()
		return
	}

	h.hub.Join(c, chatIDs...)
	c.Start()
}

// handleClose removes the channel from the registry. A superseded
// channel is a no-op there.
func (h *Handler) handleClose(c *Client) {
	ctx, cancel := context.WithTimeout(c.Context(), disconnectTimeout)
	defer cancel()
	if err := h.messenger.Disconnect(ctx, c.ChannelID()); err != nil {
		c.logger.Warn().Err(err).Msg("failed to disconnect channel")
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no Origin
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
