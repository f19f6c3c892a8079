// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package config provides centralized configuration management for Tablemap.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The merged result is validated before
Load returns it, so callers never see a half-valid Config.

# Configuration Sources

  - Defaults from defaultConfig()
  - YAML file from CONFIG_PATH, ./config.yaml or /etc/tablemap/config.yaml
  - Environment variables (highest precedence)

# Environment Variables

Server and storage:
  - HTTP_PORT: Listen port (default: 8080)
  - DUCKDB_PATH: DuckDB database file (default: /data/tablemap.duckdb)
  - STATE_BACKEND: memory, redis or badger for connection and rate state (default: memory)
  - PREFERENCES_BACKEND: memory, redis or badger for preference records (default: badger)
  - REDIS_URL: Redis URL, required when any backend is redis

Recommendations:
  - RECOMMEND_DEFAULT_LIMIT: Results when no limit is given (default: 20)
  - RECOMMEND_MAX_CANDIDATES: Candidate pool bound (default: 100)
  - RECOMMEND_MAX_RADIUS_KM: Candidate radius (default: 5)
  - RECOMMEND_TIMEOUT: Per-request scoring deadline (default: 10s)

Signal weights are file-only (recommend.weights.*) and must sum to 1.0.

Messaging:
  - MESSAGE_MAX_LENGTH: Maximum message length in characters (default: 500)
  - MESSAGE_RATE_MAX / MESSAGE_RATE_WINDOW: Send limit (default: 5 per 1s)
  - MESSAGE_READ_BATCH: Read receipts per flush (default: 100)
  - MESSAGE_TIMEZONE: Zone for display timestamps (default: Asia/Seoul)
  - FANOUT_BACKEND: local, gochannel or nats (default: local)

Security:
  - JWT_SECRET: HS256 verification secret (required, min 32 chars)
  - CORS_ORIGINS, ADMIN_USERS: Comma-separated lists

# Example Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load configuration: %v", err)
	}
	fmt.Printf("Listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
*/
package config
