// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/tablemap/internal/metrics"
	"github.com/tomtom215/tablemap/internal/models"
)

// CreateNotificationRequest describes one notification to deliver.
type CreateNotificationRequest struct {
	RecipientID string                  `json:"recipientId" validate:"required,max=64"`
	SenderID    string                  `json:"senderId,omitempty" validate:"max=64"`
	Type        models.NotificationType `json:"type" validate:"required"`
	Message     string                  `json:"message" validate:"required,max=1000"`
	RelatedID   string                  `json:"relatedId,omitempty" validate:"max=64"`
	RelatedType string                  `json:"relatedType,omitempty" validate:"max=32"`
}

// CreateNotification persists a notification and pushes it when the
// recipient is online. pushed is false for offline recipients, which is not
// an error: the notification stays unread in their inbox.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (d *Dispatcher) CreateNotification(ctx context.Context, req CreateNotificationRequest) (n *models.Notification, pushed bool, err error) {
	if strings.TrimSpace(req.RecipientID) == "" {
		return nil, false, newError(KindGeneric, "recipientId is required")
	}
	if !req.Type.Valid() {
		return nil, false, newError(KindGeneric, fmt.Sprintf("unknown notification type %q", req.Type))
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, false, newError(KindGeneric, "message is required")
	}

	n = &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Message:     req.Message,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
		CreatedAt:   d.timestamp(),
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return nil, false, fmt.Errorf("persist notification: %w", err)
	}
	if n.SenderID != "" {
		n.Sender = d.userSummary(ctx, n.SenderID)
	}

	pushed = d.pushNotification(ctx, n)
	metrics.RecordNotification(string(n.Type), pushed)
	return n, pushed, nil
}

func (d *Dispatcher) pushNotification(ctx context.Context, n *models.Notification) bool {
	_, online, err := d.presence.Lookup(ctx, n.RecipientID)
	if err != nil {
		// Already persisted, so a presence failure only costs the live push
		d.requestLogger(ctx).Warn().Err(err).Str("recipient_id", n.RecipientID).Msg("Presence lookup failed, notification stored only")
		return false
	}
	if !online {
		return false
	}
	return d.pusher.PushToUser(ctx, n.RecipientID, Event{Type: EventNewNotification, Data: n})
}

// MarkNotificationRead marks one of userID's notifications read. Marking
// an already-read notification succeeds without changing it.
func (d *Dispatcher) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	n, err := d.store.GetNotification(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if n.RecipientID != userID {
		return newError(KindAuthorization, "not your notification")
	}
	if n.Read {
		return nil
	}
	if err := d.store.MarkNotificationRead(ctx, notificationID, d.timestamp()); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of userID read
// and returns how many changed.
func (d *Dispatcher) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	n, err := d.store.MarkAllNotificationsRead(ctx, userID, d.timestamp())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

// ListNotifications returns userID's notifications newest first, with
// sender summaries populated.
func (d *Dispatcher) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	list, err := d.store.ListNotifications(ctx, userID, unreadOnly, d.config.pageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	for i := range list {
		if list[i].SenderID != "" {
			list[i].Sender = d.userSummary(ctx, list[i].SenderID)
		}
	}
	return list, nil
}

// UnreadNotificationCount returns how many notifications userID has not read.
func (d *Dispatcher) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	n, err := d.store.UnreadNotificationCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
