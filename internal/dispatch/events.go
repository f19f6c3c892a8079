// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"github.com/tomtom215/tablemap/internal/models"
)

// Outbound event types
const (
	EventNewMessage      = "new_message"
	EventNewNotification = "new_notification"
	EventMessagesRead    = "messages_read"
	EventUserOnline      = "user_online"
	EventUserOffline     = "user_offline"
	EventError           = "error"
)

// Event is one frame pushed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewMessagePayload is the data of a new_message event.
type NewMessagePayload struct {
	ID           string `json:"id"`
	ChatID       string `json:"chatId"`
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	ProfileImage string `json:"profileImage,omitempty"`
	Content      string `json:"content"`
	// Timestamp is the wall-clock HH:MM in the configured zone.
	Timestamp      string             `json:"timestamp"`
	Type           models.MessageType `json:"type"`
	RestaurantData *models.Restaurant `json:"restaurantData,omitempty"`
	Read           bool               `json:"read"`
}

// MessagesReadPayload is the data of a messages_read event.
type MessagesReadPayload struct {
	UserID     string   `json:"userId"`
	ChatID     string   `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
}

// PresencePayload is the data of user_online and user_offline events.
type PresencePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
	Type    Kind   `json:"type"`
}
