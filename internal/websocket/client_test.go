// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// socketPair returns the server and client ends of one live connection.
func socketPair(t *testing.T) (serverConn, clientConn *websocket.Conn) {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(server.Close)

	clientConn = dialWebSocket(t, server.URL)
	t.Cleanup(func() { _ = clientConn.Close() })

	select {
	case serverConn = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the connection never arrived")
	}
	t.Cleanup(func() { _ = serverConn.Close() })
	return serverConn, clientConn
}

// dialWebSocket establishes a WebSocket connection to a test server URL
func dialWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	return conn
}

// wireEvent is the decoded form of one outbound frame.
type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var ev wireEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("frame %s is not an event: %v", data, err)
	}
	return ev
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	c := NewClient(context.Background(), th.hub, nil, "alice", "ch-1", ClientLimits{}, zerolog.Nop())

	if cap(c.send) != defaultSendBuffer {
		t.Errorf("send capacity = %d, want %d", cap(c.send), defaultSendBuffer)
	}
	if c.inbound.Burst() != defaultInboundBurst {
		t.Errorf("inbound burst = %d, want %d", c.inbound.Burst(), defaultInboundBurst)
	}
	if c.UserID() != "alice" || c.ChannelID() != "ch-1" {
		t.Errorf("identity = %s/%s", c.UserID(), c.ChannelID())
	}

	other := NewClient(context.Background(), th.hub, nil, "bob", "ch-2", ClientLimits{SendBuffer: 4}, zerolog.Nop())
	if other.ID() <= c.ID() {
		t.Errorf("client IDs not increasing: %d then %d", c.ID(), other.ID())
	}
	if cap(other.send) != 4 {
		t.Errorf("send capacity = %d, want 4", cap(other.send))
	}
}

func TestClient_Constants(t *testing.T) {
	t.Parallel()

	if writeWait != 10*time.Second {
		t.Errorf("writeWait = %v", writeWait)
	}
	if pongWait != 60*time.Second {
		t.Errorf("pongWait = %v", pongWait)
	}
	if pingPeriod != (pongWait*9)/10 || pingPeriod >= pongWait {
		t.Errorf("pingPeriod = %v", pingPeriod)
	}
	if maxMessageSize != 64*1024 {
		t.Errorf("maxMessageSize = %d", maxMessageSize)
	}
}

func TestClient_Context_OutlivesRequest(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	reqCtx, cancel := context.WithCancel(context.Background())
	c := NewClient(reqCtx, th.hub, nil, "alice", "ch-1", ClientLimits{}, zerolog.Nop())
	cancel()

	if err := c.Context().Err(); err != nil {
		t.Errorf("client context ended with the request: %v", err)
	}
	c.cancel()
	if c.Context().Err() == nil {
		t.Error("client context should end when the socket closes")
	}
}

func TestClient_WritePump_SendsQueuedEvents(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	serverConn, clientConn := socketPair(t)
	c := NewClient(context.Background(), th.hub, serverConn, "alice", "ch-1", ClientLimits{}, zerolog.Nop())
	go c.writePump()

	c.send <- []byte(`{"type":"new_message","data":{"content":"hi"}}`)

	ev := readEvent(t, clientConn)
	if ev.Type != "new_message" {
		t.Errorf("Type = %q, want new_message", ev.Type)
	}
}

func TestClient_WritePump_QueueClosed(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	serverConn, clientConn := socketPair(t)
	c := NewClient(context.Background(), th.hub, serverConn, "alice", "ch-1", ClientLimits{}, zerolog.Nop())
	if _, err := th.registry.Register(context.Background(), "alice", "ch-1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := th.hub.Register(context.Background(), c); err != nil {
		t.Fatalf("hub.Register() error = %v", err)
	}
	waitFor(t, func() bool { return th.hub.GetClientCount() == 1 }, "registration")
	go c.writePump()

	th.hub.Unregister(c)

	_ = clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := clientConn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNoStatusReceived) {
		t.Errorf("ReadMessage() error = %v, want a close frame", err)
	}
}

func TestClient_ReadPump_ClosesOnPeerClose(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	serverConn, clientConn := socketPair(t)
	c := NewClient(context.Background(), th.hub, serverConn, "alice", "ch-1", ClientLimits{}, zerolog.Nop())
	if err := th.hub.Register(context.Background(), c); err != nil {
		t.Fatalf("hub.Register() error = %v", err)
	}
	waitFor(t, func() bool { return th.hub.GetClientCount() == 1 }, "registration")

	closed := make(chan struct{})
	c.onClose = func(*Client) { close(closed) }
	go c.readPump()

	_ = clientConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("onClose not called")
	}
	waitFor(t, func() bool { return th.hub.GetClientCount() == 0 }, "unregister")
	if c.Context().Err() == nil {
		t.Error("client context still live after close")
	}
}

func TestClient_ReadPump_MalformedFrame(t *testing.T) {
	t.Parallel()

	th := setupHub(t)
	serverConn, clientConn := socketPair(t)
	c := NewClient(context.Background(), th.hub, serverConn, "alice", "ch-1", ClientLimits{}, zerolog.Nop())
	if err := th.hub.Register(context.Background(), c); err != nil {
		t.Fatalf("hub.Register() error = %v", err)
	}
	waitFor(t, func() bool { return th.hub.GetClientCount() == 1 }, "registration")

	frames := make(chan Frame, 1)
	c.onFrame = func(_ *Client, f Frame) { frames <- f }
	c.Start()

	if err := clientConn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if ev := readEvent(t, clientConn); ev.Type != "error" {
		t.Errorf("malformed frame reply = %q, want error", ev.Type)
	}

	if err := clientConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	select {
	case f := <-frames:
		if f.Type != FramePing {
			t.Errorf("frame type = %q", f.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame not handed to onFrame")
	}
}
