// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tablemap/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64 KB

	defaultSendBuffer   = 256
	defaultInboundRate  = 20
	defaultInboundBurst = 40
)

// clientIDCounter orders clients for deterministic room delivery.
var clientIDCounter atomic.Uint64

// Frame is one inbound message from a client.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClientLimits bounds one socket.
type ClientLimits struct {
	// SendBuffer is the outbound queue length before the client counts as slow.
	SendBuffer int
	// InboundRate is frames per second; InboundBurst the bucket size.
	InboundRate  float64
	InboundBurst int
}

func (l ClientLimits) withDefaults() ClientLimits {
	if l.SendBuffer <= 0 {
		l.SendBuffer = defaultSendBuffer
	}
	if l.InboundRate <= 0 {
		l.InboundRate = defaultInboundRate
	}
	if l.InboundBurst <= 0 {
		l.InboundBurst = defaultInboundBurst
	}
	return l
}

// Client is one authenticated socket. It sits between the connection and
// the hub.
type Client struct {
	id        uint64
	userID    string
	channelID string

	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	inbound *rate.Limiter
	logger  zerolog.Logger

	// ctx outlives the upgrade request and ends when the socket closes
	ctx    context.Context
	cancel context.CancelFunc

	// Guarded by hub.mu
	closed bool
	rooms  map[string]struct{}

	// removed is closed once the hub has dropped the client
	removed   chan struct{}
	closeOnce sync.Once

	onFrame func(*Client, Frame)
	onClose func(*Client)
}

// NewClient creates a client for an upgraded connection. ctx carries the
// request-scoped values (logger, request ID) for frame handling.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, userID, channelID string, limits ClientLimits, logger zerolog.Logger) *Client {
	limits = limits.withDefaults()
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &Client{
		id:        clientIDCounter.Add(1),
		userID:    userID,
		channelID: channelID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, limits.SendBuffer),
		inbound:   rate.NewLimiter(rate.Limit(limits.InboundRate), limits.InboundBurst),
		logger:    logger.With().Str("user_id", userID).Str("channel_id", channelID).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     make(map[string]struct{}),
		removed:   make(chan struct{}),
	}
}

// ID returns the client's ordering key.
func (c *Client) ID() uint64 { return c.id }

// UserID returns the authenticated user of the socket.
func (c *Client) UserID() string { return c.userID }

// ChannelID returns the registry channel of the socket.
func (c *Client) ChannelID() string { return c.channelID }

// Context ends when the socket closes.
func (c *Client) Context() context.Context { return c.ctx }

// readPump reads frames until the connection fails, then unregisters the
// client and runs the close callback.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.closeConn()
		if c.onClose != nil {
			c.onClose(c)
		}
		c.cancel()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected websocket close error")
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
			}
			return
		}

		if !c.inbound.Allow() {
			c.logger.Warn().Msg("inbound frame rate exceeded, closing socket")
			metrics.WSErrors.WithLabelValues("inbound_rate").Inc()
			c.writeClose(websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
			metrics.WSErrors.WithLabelValues("bad_frame").Inc()
			c.hub.SendTo(c, errorEvent("malformed frame"))
			continue
		}
		metrics.WSFramesReceived.WithLabelValues(frame.Type).Inc()
		if c.onFrame != nil {
			c.onFrame(c, frame)
		}
	}
}

// writePump drains the send queue to the connection and pings on an
// interval. Each ping also refreshes the registry entry.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the queue
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			if err := c.hub.presence.Touch(c.ctx, c.userID, c.channelID); err != nil {
				c.logger.Warn().Err(err).Msg("failed to refresh presence")
			}
		}
	}
}

func (c *Client) writeClose(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// closeConn closes the underlying connection once.
func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			_ = c.conn.Close() // best-effort cleanup
		}
	})
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
