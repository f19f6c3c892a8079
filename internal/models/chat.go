// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import (
	"time"
)

// MessageType is the kind of chat message content.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessageImage      MessageType = "image"
	MessageLocation   MessageType = "location"
	MessageRestaurant MessageType = "restaurant"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageLocation, MessageRestaurant:
		return true
	}
	return false
}

// Chat is a conversation between participants.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasParticipant reports whether userID belongs to the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a persisted chat message. Content is immutable once created;
// ReadBy only grows.
type Message struct {
	ID           string       `json:"id"`
	ChatID       string       `json:"chatId"`
	SenderID     string       `json:"senderId"`
	Content      string       `json:"content"`
	Type         MessageType  `json:"type"`
	RestaurantID string       `json:"restaurantId,omitempty"`
	ReadBy       []ReadMarker `json:"readBy"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ReadMarker records when a user read a message.
type ReadMarker struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

// IsReadBy reports whether userID has read the message.
func (m *Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
