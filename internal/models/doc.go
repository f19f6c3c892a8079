// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package models defines the data structures shared across Tablemap.

Key Components:

  - Restaurant: Read-only catalog entry with category, price range, hours and location
  - UserPreference: Accumulated taste profile (game weights, visits, likes, follows)
  - Chat, Message: Conversations and their immutable messages with read markers
  - Notification: Typed notification whose read flag is the only mutable field
  - User, UserSummary: Profile data embedded in push events
  - APIResponse: Standard HTTP response envelope

Enumerations (Category, PriceRange, MealTime, Companion, Season, MessageType,
NotificationType) are string types with Valid methods so request validation
and scoring share one definition.

JSON field names are camelCase to match the real-time client protocol.
*/
package models
