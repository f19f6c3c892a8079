// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
)

// Inbound frame types
const (
	FrameSendMessage = "send_message"
	FrameJoinChat    = "join_chat"
	FrameLeaveChat   = "leave_chat"
	FrameMarkRead    = "mark_read"
	FramePing        = "ping"

	// EventPong answers FramePing
	EventPong = "pong"
)

// Messenger is the dispatcher surface driven by socket frames and the
// socket lifecycle. Satisfied by *dispatch.Dispatcher.
type Messenger interface {
	Connect(ctx context.Context, userID, channelID string) ([]string, error)
	Disconnect(ctx context.Context, channelID string) error
	SendMessage(ctx context.Context, req dispatch.SendMessageRequest) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, userID, chatID string) ([]string, error)
	CanJoin(ctx context.Context, userID, chatID string) error
}

type chatFrame struct {
	ChatID string `json:"chatId"`
}

// handleFrame runs one inbound frame. Frames of one socket are handled in
// order; frames of different sockets run concurrently.
func (h *Handler) handleFrame(c *Client, frame Frame) {
	ctx := c.Context()

	switch frame.Type {
	case FrameSendMessage:
		var req dispatch.SendMessageRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			h.hub.SendTo(c, errorEvent("malformed send_message"))
			return
		}
		req.SenderID = c.UserID()
		// Rejections are pushed to the sender by the dispatcher
		_, _ = h.messenger.SendMessage(ctx, req)

	case FrameJoinChat:
		chatID, ok := h.chatID(c, frame)
		if !ok {
			return
		}
		if err := h.messenger.CanJoin(ctx, c.UserID(), chatID); err != nil {
			h.replyError(c, err)
			return
		}
		h.hub.Join(c, chatID)

	case FrameLeaveChat:
		if chatID, ok := h.chatID(c, frame); ok {
			h.hub.Leave(c, chatID)
		}

	case FrameMarkRead:
		chatID, ok := h.chatID(c, frame)
		if !ok {
			return
		}
		if _, err := h.messenger.MarkMessagesRead(ctx, c.UserID(), chatID); err != nil {
			h.replyError(c, err)
		}

	case FramePing:
		h.hub.SendTo(c, dispatch.Event{Type: EventPong})

	default:
		h.hub.SendTo(c, errorEvent("unknown frame type "+frame.Type))
	}
}

func (h *Handler) chatID(c *Client, frame Frame) (string, bool) {
	var body chatFrame
	if err := json.Unmarshal(frame.Data, &body); err != nil || strings.TrimSpace(body.ChatID) == "" {
		h.hub.SendTo(c, errorEvent("chatId is required"))
		return "", false
	}
	return body.ChatID, true
}

// replyError sends err to c. Errors without a kind are logged and reported
// as a generic failure.
func (h *Handler) replyError(c *Client, err error) {
	var de *dispatch.Error
	if !errors.As(err, &de) {
		c.logger.Error().Err(err).Msg("frame handling failed")
		h.hub.SendTo(c, errorEvent("request failed"))
		return
	}
	h.hub.SendTo(c, dispatch.Event{
		Type: dispatch.EventError,
		Data: dispatch.ErrorPayload{Message: de.Message, Type: de.Kind},
	})
}

func errorEvent(message string) dispatch.Event {
	return dispatch.Event{
		Type: dispatch.EventError,
		Data: dispatch.ErrorPayload{Message: message, Type: dispatch.KindGeneric},
	}
}
