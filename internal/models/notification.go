// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import (
	"time"
)

// NotificationType is the kind of notification.
type NotificationType string

const (
	NotificationFollow          NotificationType = "follow"
	NotificationPlaylistLike    NotificationType = "playlist_like"
	NotificationPlaylistSave    NotificationType = "playlist_save"
	NotificationNewPlaylist     NotificationType = "new_playlist"
	NotificationMatchSuggestion NotificationType = "match_suggestion"
	NotificationNewMessage      NotificationType = "new_message"
	NotificationSystem          NotificationType = "system"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationPlaylistLike, NotificationPlaylistSave,
		NotificationNewPlaylist, NotificationMatchSuggestion, NotificationNewMessage,
		NotificationSystem:
		return true
	}
	return false
}

// Notification is a persisted notification. Only Read and ReadAt ever change.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	SenderID    string           `json:"senderId,omitempty"`
	Sender      *UserSummary     `json:"sender,omitempty"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	RelatedID   string           `json:"relatedId,omitempty"`
	RelatedType string           `json:"relatedType,omitempty"`
	Read        bool             `json:"read"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
