// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tomtom215/tablemap/internal/metrics"
	"github.com/tomtom215/tablemap/internal/models"
)

// SendMessageRequest is one inbound chat message.
type SendMessageRequest struct {
	SenderID     string             `json:"-"`
	ChatID       string             `json:"chatId" validate:"required,max=64"`
	Content      string             `json:"content"`
	Type         models.MessageType `json:"type,omitempty"`
	RestaurantID string             `json:"restaurantId,omitempty"`
}

// SendMessage rate-checks, validates, authorizes, persists and fans out a
// message. Rejections are *Error values and are also pushed to the sender.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (d *Dispatcher) SendMessage(ctx context.Context, req SendMessageRequest) (*models.Message, error) {
	msg, err := d.sendMessage(ctx, req)
	if err != nil {
		kind, ok := KindOf(err)
		if !ok {
			kind = "dependency"
			d.requestLogger(ctx).Error().Err(err).Str("chat_id", req.ChatID).Msg("Failed to send message")
		}
		metrics.MessageRejections.WithLabelValues(string(kind)).Inc()
		return nil, d.reject(ctx, req.SenderID, err)
	}
	metrics.MessagesSent.Inc()
	return msg, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (d *Dispatcher) sendMessage(ctx context.Context, req SendMessageRequest) (*models.Message, error) {
	decision, err := d.limiter.Allow(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if !decision.Allowed {
		return nil, newError(KindRateLimit, fmt.Sprintf("too many messages, retry in %s", decision.RetryAfter.Round(time.Millisecond)))
	}

	if req.Type == "" {
		req.Type = models.MessageText
	}
	if err := d.validateMessage(&req); err != nil {
		return nil, err
	}

	if _, err := d.authorizeChat(ctx, req.SenderID, req.ChatID); err != nil {
		return nil, err
	}

	now := d.timestamp()
	msg := &models.Message{
		ID:           uuid.New().String(),
		ChatID:       req.ChatID,
		SenderID:     req.SenderID,
		Content:      req.Content,
		Type:         req.Type,
		RestaurantID: req.RestaurantID,
		ReadBy:       []models.ReadMarker{{UserID: req.SenderID, ReadAt: now}},
		CreatedAt:    now,
	}
	if err := d.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	d.pusher.PushToRoom(ctx, msg.ChatID, Event{Type: EventNewMessage, Data: d.newMessagePayload(ctx, msg)})
	return msg, nil
}

func (d *Dispatcher) validateMessage(req *SendMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return newError(KindGeneric, "message content is required")
	}
	if n := utf8.RuneCountInString(req.Content); n > d.config.MaxMessageLength {
		return newError(KindMessageTooLong, fmt.Sprintf("message is %d characters, limit is %d", n, d.config.MaxMessageLength))
	}
	if !req.Type.Valid() {
		return newError(KindGeneric, fmt.Sprintf("unknown message type %q", req.Type))
	}
	if req.Type == models.MessageRestaurant && req.RestaurantID == "" {
		return newError(KindGeneric, "restaurant messages need a restaurantId")
	}
	return nil
}

func (d *Dispatcher) newMessagePayload(ctx context.Context, msg *models.Message) NewMessagePayload {
	sender := d.userSummary(ctx, msg.SenderID)
	payload := NewMessagePayload{
		ID:           msg.ID,
		ChatID:       msg.ChatID,
		SenderID:     msg.SenderID,
		SenderName:   sender.Username,
		ProfileImage: sender.ProfileImage,
		Content:      msg.Content,
		Timestamp:    msg.CreatedAt.In(d.config.Location).Format("15:04"),
		Type:         msg.Type,
	}
	if msg.RestaurantID != "" && d.restaurants != nil {
		if r, ok := d.restaurants.Get(msg.RestaurantID); ok {
			payload.RestaurantData = r
		}
	}
	return payload
}

// MarkMessagesRead marks the oldest unread messages of a chat read for
// userID, at most ReadBatchSize per call, and announces them to the room.
// It returns the IDs marked; an empty result means nothing was unread.
func (d *Dispatcher) MarkMessagesRead(ctx context.Context, userID, chatID string) ([]string, error) {
	if _, err := d.authorizeChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	ids, err := d.store.UnreadMessageIDs(ctx, chatID, userID, d.config.ReadBatchSize)
	if err != nil {
		return nil, fmt.Errorf("load unread messages: %w", err)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	if err := d.store.MarkMessagesRead(ctx, userID, ids, d.timestamp()); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}

	metrics.ReadReceiptsTotal.Add(float64(len(ids)))
	d.pusher.PushToRoom(ctx, chatID, Event{
		Type: EventMessagesRead,
		Data: MessagesReadPayload{UserID: userID, ChatID: chatID, MessageIDs: ids},
	})
	return ids, nil
}

// History returns a page of a chat's messages created before `before`
// (the latest page when zero), oldest to newest.
func (d *Dispatcher) History(ctx context.Context, userID, chatID string, before time.Time, limit int) ([]models.Message, error) {
	if _, err := d.authorizeChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	msgs, err := d.store.History(ctx, chatID, before, d.config.pageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return msgs, nil
}
