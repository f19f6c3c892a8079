// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package main provides the Tablemap HTTP server
//
// Tablemap API serves personalized restaurant recommendations and
// real-time chat and notifications between users.
//
// @title Tablemap API
// @version 1.0
// @description Restaurant discovery with personalized recommendations and real-time social messaging
// @description
// @description ## Features
// @description
// @description - **Recommendations**: ten weighted signals over nearby candidates, with a fallback for new users
// @description - **Preferences**: game weights, visits, likes, follows, blocks and situational preferences
// @description - **Chat**: persisted messages with live delivery over WebSocket (`/api/v1/ws`)
// @description - **Notifications**: stored per recipient and pushed to online users
// @description
// @description ## Authentication
// @description
// @description Endpoints under `/api/v1` require a JWT bearer token in the `Authorization` header.
// @description The WebSocket endpoint also accepts the token as the `token` query parameter.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Chat sends are additionally limited per user (10 messages per 60 seconds by default).
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-05-14T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/tablemap/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token: "Bearer <token>".
//
// @tag.name Core
// @tag.description Health checks and system status
//
// @tag.name Recommendations
// @tag.description Personalized restaurant recommendations
//
// @tag.name Preferences
// @tag.description Game weights, engagement history and situational preferences
//
// @tag.name Users
// @tag.description User profile
//
// @tag.name Messaging
// @tag.description Chats, message history and presence
//
// @tag.name Notifications
// @tag.description Notification inbox and delivery
//
// @tag.name Admin
// @tag.description Catalog and curator management
package main
