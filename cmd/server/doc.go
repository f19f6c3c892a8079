// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package main is the entry point for the Tablemap server application.

Tablemap serves personalized restaurant recommendations and carries chat
messages and notifications between users in real time. Recommendations are
computed from a user's explicit "game" preferences, engagement history,
followed curators and the situation of the request. Chat and notification
events are persisted in DuckDB and pushed to online users over WebSocket.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("tablemap")
	├── DataSupervisor ("data-layer")
	│   ├── Catalog refresh (restaurants from DuckDB)
	│   └── Recommendation log writer
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (live sockets and chat rooms)
	│   ├── Fan-out relay (optional, gochannel or NATS)
	│   └── Dispatcher user cache
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB for restaurants, chats, messages and notifications
 4. Key-value stores: connection registry, rate limit windows, preferences
 5. Recommendation engine: catalog, scorer, circuit breaker
 6. Messaging: registry, rate limiter, hub, relay, dispatcher
 7. Authentication and authorization: JWT and Casbin
 8. Supervisor Tree and HTTP Server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Storage
	DUCKDB_PATH=/data/tablemap.duckdb
	STATE_BACKEND=memory         # memory, redis, badger
	PREFERENCES_BACKEND=badger
	PREFERENCES_BADGER_PATH=/data/preferences
	REDIS_URL=redis://localhost:6379/0

	# Messaging
	MESSAGE_RATE_MAX=10
	MESSAGE_RATE_WINDOW=60s
	MESSAGE_TIMEZONE=Asia/Seoul
	FANOUT_BACKEND=local         # local, gochannel, nats
	NATS_URL=nats://localhost:4222

	# Security
	JWT_SECRET=<32+ chars>
	ADMIN_USERS=alice,bob

A config file can be supplied with CONFIG_PATH.

# Multiple Instances

Running more than one instance requires a shared connection registry and a
fan-out relay so pushes reach sockets held by other nodes:

	export STATE_BACKEND=redis REDIS_URL=redis://redis:6379/0
	export FANOUT_BACKEND=nats NATS_URL=nats://nats:4222
	./tablemap

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Closes every WebSocket, unregistering it from the connection registry
 3. Stops the fan-out relay
 4. Flushes pending recommendation logs
 5. Closes the key-value stores and the database
 6. Reports any services that failed to stop

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running. Endpoints are grouped into:

  - Core: health, liveness and readiness
  - Recommendations: personalized results with a new-user fallback
  - Preferences: game weights, visits, likes, follows, blocks
  - Messaging: chats, history, read markers, presence, WebSocket
  - Notifications: inbox, unread count, delivery
  - Admin: restaurants, endorsements, catalog refresh

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/recommend: Candidate selection and scoring
  - internal/dispatch: Message and notification delivery
*/
package main
