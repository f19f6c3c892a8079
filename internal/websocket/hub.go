// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

const relayQueueSize = 256

// Presence is the part of the connection registry the hub consults before
// delivering. Satisfied by *registry.Registry.
type Presence interface {
	Lookup(ctx context.Context, userID string) (channelID string, ok bool, err error)
	IsCurrent(ctx context.Context, userID, channelID string) (bool, error)
	Touch(ctx context.Context, userID, channelID string) error
}

// Hub owns the live sockets of this node and the chat rooms they joined.
//
// Lifecycle events flow through the Run loop. Pushes are delivered in the
// caller's goroutine under a read lock so PushToUser can report whether
// the event reached a socket.
type Hub struct {
	logger   zerolog.Logger
	presence Presence
	relay    *Relay

	// clients is keyed by channel ID
	clients map[string]*Client
	// rooms maps chat ID to the channel IDs joined to it
	rooms map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client
	relayed    chan *Envelope
	mu         sync.RWMutex
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithRelay forwards pushes for sockets held by other nodes through relay
// and delivers the envelopes relay receives.
func WithRelay(relay *Relay) HubOption {
	return func(h *Hub) {
		if relay == nil {
			return
		}
		h.relay = relay
		relay.deliver = h.enqueueRelayed
	}
}

// NewHub creates a Hub. Call RunWithContext to process lifecycle events.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(presence Presence, logger zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
		presence:   presence,
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		relayed:    make(chan *Envelope, relayQueueSize),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register hands c to the run loop. It fails when ctx ends first, which
// happens when the hub is not running.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes c. It returns at once when the hub already dropped c.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-c.removed:
	}
}

// RunWithContext processes lifecycle events until ctx is canceled, then
// closes every client and returns ctx.Err().
//
// Priority order: shutdown, then lifecycle events, then relayed envelopes.
// Registering before delivering keeps client state consistent for the
// envelopes that follow.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.addClient(c)
			continue
		case c := <-h.unregister:
			h.removeClient(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case env := <-h.relayed:
			h.deliverEnvelope(ctx, env)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.channelID] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	h.logger.Info().
		Str("user_id", c.userID).
		Str("channel_id", c.channelID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	removed := h.dropLocked(c)
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		h.logger.Info().
			Str("user_id", c.userID).
			Str("channel_id", c.channelID).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// dropLocked removes c from every map and closes its send queue.
// Must be called with h.mu held for writing.
func (h *Hub) dropLocked(c *Client) bool {
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	close(c.removed)

	if h.clients[c.channelID] == c {
		delete(h.clients, c.channelID)
		metrics.WSConnectionsActive.Dec()
	}
	for chatID := range c.rooms {
		if members := h.rooms[chatID]; members != nil {
			delete(members, c.channelID)
			if len(members) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
	c.rooms = nil
	return true
}

// Join adds c to the rooms of chatIDs. Closed clients are ignored.
func (h *Hub) Join(c *Client, chatIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for _, chatID := range chatIDs {
		members := h.rooms[chatID]
		if members == nil {
			members = make(map[string]*Client)
			h.rooms[chatID] = members
		}
		members[c.channelID] = c
		c.rooms[chatID] = struct{}{}
	}
}

// Leave removes c from the room of chatID.
func (h *Hub) Leave(c *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members := h.rooms[chatID]; members != nil {
		delete(members, c.channelID)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if c.rooms != nil {
		delete(c.rooms, chatID)
	}
}

// PushToUser delivers event to userID's current channel. It reports false
// when the user has no channel, which callers treat as offline.
func (h *Hub) PushToUser(ctx context.Context, userID string, event dispatch.Event) bool {
	channelID, ok, err := h.presence.Lookup(ctx, userID)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("presence lookup failed, push skipped")
		metrics.PushDeliveries.WithLabelValues("offline").Inc()
		return false
	}
	if !ok {
		metrics.PushDeliveries.WithLabelValues("offline").Inc()
		return false
	}

	data, err := MarshalEvent(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to marshal event")
		return false
	}

	if h.deliverToChannel(channelID, data) {
		metrics.PushDeliveries.WithLabelValues("delivered").Inc()
		return true
	}
	if h.publish(ctx, &Envelope{Kind: EnvelopeUser, Target: userID, Channel: channelID, Payload: data}) {
		metrics.PushDeliveries.WithLabelValues("relayed").Inc()
		return true
	}
	metrics.PushDeliveries.WithLabelValues("dropped").Inc()
	return false
}

// PushToRoom delivers event to every current channel joined to chatID on
// this node and relays it to the other nodes.
func (h *Hub) PushToRoom(ctx context.Context, chatID string, event dispatch.Event) {
	data, err := MarshalEvent(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to marshal event")
		return
	}
	h.deliverToRoom(ctx, chatID, data)
	h.publish(ctx, &Envelope{Kind: EnvelopeRoom, Target: chatID, Payload: data})
}

// deliverToChannel queues data on the socket of channelID if this node
// holds it.
func (h *Hub) deliverToChannel(channelID string, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[channelID]
	if !ok {
		return false
	}
	return h.trySendLocked(c, data)
}

// deliverToRoom sends data to room members in client ID order, skipping
// channels superseded by a newer connection of the same user.
func (h *Hub) deliverToRoom(ctx context.Context, chatID string, data []byte) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[chatID]))
	for _, c := range h.rooms[chatID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool {
		return members[i].id < members[j].id
	})

	for _, c := range members {
		current, err := h.presence.IsCurrent(ctx, c.userID, c.channelID)
		if err != nil {
			h.logger.Warn().Err(err).Str("channel_id", c.channelID).Msg("presence check failed, skipping member")
			continue
		}
		if !current {
			continue
		}
		h.mu.RLock()
		sent := h.trySendLocked(c, data)
		h.mu.RUnlock()
		if sent {
			metrics.PushDeliveries.WithLabelValues("delivered").Inc()
		} else {
			metrics.PushDeliveries.WithLabelValues("dropped").Inc()
		}
	}
}

// trySendLocked queues data without blocking. A full queue means the
// client cannot keep up; its connection is closed and the read pump
// unregisters it. Must be called with h.mu held.
func (h *Hub) trySendLocked(c *Client, data []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		h.logger.Warn().Str("channel_id", c.channelID).Msg("send queue full, closing slow client")
		metrics.WSErrors.WithLabelValues("slow_consumer").Inc()
		go c.closeConn()
		return false
	}
}

// SendTo queues an event for c alone, bypassing presence. Used for
// replies to c's own frames.
func (h *Hub) SendTo(c *Client, event dispatch.Event) bool {
	data, err := MarshalEvent(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to marshal event")
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.trySendLocked(c, data)
}

func (h *Hub) publish(ctx context.Context, env *Envelope) bool {
	if h.relay == nil {
		return false
	}
	if err := h.relay.Publish(ctx, env); err != nil {
		h.logger.Debug().Err(err).Str("kind", env.Kind).Str("target", env.Target).Msg("relay publish failed")
		return false
	}
	return true
}

// enqueueRelayed hands an envelope from another node to the run loop.
func (h *Hub) enqueueRelayed(env *Envelope) {
	select {
	case h.relayed <- env:
	default:
		h.logger.Warn().Str("kind", env.Kind).Msg("relay queue full, dropping envelope")
		metrics.PushDeliveries.WithLabelValues("dropped").Inc()
	}
}

func (h *Hub) deliverEnvelope(ctx context.Context, env *Envelope) {
	switch env.Kind {
	case EnvelopeUser:
		current, err := h.presence.IsCurrent(ctx, env.Target, env.Channel)
		if err != nil || !current {
			return
		}
		if h.deliverToChannel(env.Channel, env.Payload) {
			metrics.PushDeliveries.WithLabelValues("delivered").Inc()
		}
	case EnvelopeRoom:
		h.deliverToRoom(ctx, env.Target, env.Payload)
	default:
		h.logger.Warn().Str("kind", env.Kind).Msg("unknown relay envelope kind")
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients drops every client in ID order. Each write pump then
// sends a close frame and its read pump runs the disconnect path.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, c := range clients {
		h.dropLocked(c)
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns how many sockets joined chatID on this node.
func (h *Hub) RoomSize(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// MarshalEvent converts an event to its wire form.
func MarshalEvent(event dispatch.Event) ([]byte, error) {
	return json.Marshal(event)
}
