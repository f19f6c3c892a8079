// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"context"
	"fmt"
)

// Connect registers channelID as userID's current channel and returns the
// IDs of the user's chats so the transport can join their rooms. The first
// channel of an offline user announces user_online to those rooms.
func (d *Dispatcher) Connect(ctx context.Context, userID, channelID string) ([]string, error) {
	wasOnline, err := d.presence.Register(ctx, userID, channelID)
	if err != nil {
		return nil, fmt.Errorf("register channel: %w", err)
	}

	chatIDs, err := d.chatIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !wasOnline {
		d.broadcastPresence(ctx, userID, chatIDs, EventUserOnline)
	}
	d.requestLogger(ctx).Debug().
		Str("user_id", userID).
		Str("channel_id", channelID).
		Int("chats", len(chatIDs)).
		Bool("superseded", wasOnline).
		Msg("Channel connected")
	return chatIDs, nil
}

// Disconnect removes channelID. A stale or superseded channel is a no-op;
// removing the user's current channel announces user_offline.
func (d *Dispatcher) Disconnect(ctx context.Context, channelID string) error {
	userID, wentOffline, err := d.presence.Unregister(ctx, channelID)
	if err != nil {
		return fmt.Errorf("unregister channel: %w", err)
	}
	if !wentOffline {
		return nil
	}

	chatIDs, err := d.chatIDs(ctx, userID)
	if err != nil {
		return err
	}
	d.broadcastPresence(ctx, userID, chatIDs, EventUserOffline)
	return nil
}

// IsOnline reports whether userID has a registered channel.
func (d *Dispatcher) IsOnline(ctx context.Context, userID string) (bool, error) {
	online, err := d.presence.IsOnline(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("presence lookup: %w", err)
	}
	return online, nil
}

func (d *Dispatcher) chatIDs(ctx context.Context, userID string) ([]string, error) {
	chats, err := d.store.ChatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load chats of %s: %w", userID, err)
	}
	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	return ids, nil
}

func (d *Dispatcher) broadcastPresence(ctx context.Context, userID string, chatIDs []string, eventType string) {
	if len(chatIDs) == 0 {
		return
	}
	user := d.userSummary(ctx, userID)
	event := Event{Type: eventType, Data: PresencePayload{UserID: userID, Username: user.Username}}
	for _, chatID := range chatIDs {
		d.pusher.PushToRoom(ctx, chatID, event)
	}
}
