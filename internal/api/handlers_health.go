// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

const healthPingTimeout = 2 * time.Second

func (h *Handler) databaseConnected(ctx context.Context) bool {
	if h.deps.Store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.deps.Store.Ping(ctx) == nil
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, catalog size, recommendation breaker state, local socket count and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:            "healthy",
		Version:           h.deps.Version,
		NodeID:            h.deps.NodeID,
		DatabaseConnected: h.databaseConnected(r.Context()),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.deps.Catalog != nil {
		health.CatalogSize = h.deps.Catalog.Len()
		health.CatalogLoadedAt = h.deps.Catalog.LoadedAt()
	}
	if h.deps.Recommender != nil {
		health.RecommendBreaker = h.deps.Recommender.BreakerState()
	}
	if h.deps.Connections != nil {
		health.Connections = h.deps.Connections.GetClientCount()
	}

	if !health.DatabaseConnected || health.RecommendBreaker == "open" {
		health.Status = "degraded"
	}

	respondSuccess(w, r, http.StatusOK, health)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only when the database answers and the catalog is loaded
//
// @Summary Kubernetes readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbOK := h.databaseConnected(r.Context())
	catalogOK := h.deps.Catalog != nil && !h.deps.Catalog.LoadedAt().IsZero()

	if !dbOK || !catalogOK {
		respondError(w, r, http.StatusServiceUnavailable, codeUnavailable, "Service not ready", map[string]interface{}{
			"database": dbOK,
			"catalog":  catalogOK,
		}, nil)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"ready":    true,
		"database": true,
		"catalog":  true,
	})
}
