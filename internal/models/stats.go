// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import (
	"time"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status            string    `json:"status"`
	Version           string    `json:"version"`
	NodeID            string    `json:"node_id,omitempty"`
	DatabaseConnected bool      `json:"database_connected"`
	CatalogSize       int       `json:"catalog_size"`
	CatalogLoadedAt   time.Time `json:"catalog_loaded_at,omitempty"`
	RecommendBreaker  string    `json:"recommend_breaker"`
	Connections       int       `json:"connections"`
	Uptime            float64   `json:"uptime_seconds"`
}
