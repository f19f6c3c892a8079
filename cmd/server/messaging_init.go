// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/database"
	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/kv"
	"github.com/tomtom215/tablemap/internal/ratelimit"
	"github.com/tomtom215/tablemap/internal/recommend"
	"github.com/tomtom215/tablemap/internal/registry"
	"github.com/tomtom215/tablemap/internal/supervisor"
	"github.com/tomtom215/tablemap/internal/supervisor/services"
	ws "github.com/tomtom215/tablemap/internal/websocket"
)

// MessagingComponents holds the real-time messaging components.
type MessagingComponents struct {
	Registry   *registry.Registry
	Limiter    *ratelimit.Limiter
	Hub        *ws.Hub
	Relay      *ws.Relay // nil for the local backend
	Dispatcher *dispatch.Dispatcher
	NodeID     string
}

// initMessaging wires the connection registry, the per-user rate limiter,
// the WebSocket hub (with the fan-out relay when configured) and the
// dispatcher, and registers their services in the messaging layer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initMessaging(
	cfg *config.Config,
	dispatchCfg *dispatch.Config,
	db *database.DB,
	state kv.Store,
	catalog *recommend.Catalog,
	logger zerolog.Logger,
	tree *supervisor.SupervisorTree,
) (*MessagingComponents, error) {
	mc := &MessagingComponents{
		Registry: registry.New(state, cfg.Messaging.PresenceTTL),
		Limiter:  ratelimit.New(state, cfg.Messaging.RateLimit),
		NodeID:   cfg.Messaging.Fanout.NodeID,
	}

	var hubOpts []ws.HubOption
	if cfg.Messaging.Fanout.Backend != "local" {
		relay, err := ws.NewRelay(cfg.Messaging.Fanout, logger)
		if err != nil {
			return nil, fmt.Errorf("fanout relay: %w", err)
		}
		mc.Relay = relay
		mc.NodeID = relay.NodeID()
		hubOpts = append(hubOpts, ws.WithRelay(relay))
	}
	mc.Hub = ws.NewHub(mc.Registry, logger, hubOpts...)

	d, err := dispatch.New(dispatchCfg, dispatch.Deps{
		Store:    db,
		Users:    db,
		Presence: mc.Registry,
		Limiter:  mc.Limiter,
		Pusher:   mc.Hub,
	}, logger, dispatch.WithRestaurants(catalog))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	mc.Dispatcher = d

	tree.AddMessagingService(services.NewHubService(mc.Hub))
	if mc.Relay != nil {
		tree.AddMessagingService(services.NewRelayService(mc.Relay, cfg.Supervisor.ShutdownTimeout))
	}
	tree.AddMessagingService(services.NewCloserService("dispatcher", mc.Dispatcher))

	logger.Info().
		Str("fanout_backend", cfg.Messaging.Fanout.Backend).
		Str("node_id", mc.NodeID).
		Int("rate_limit_max", cfg.Messaging.RateLimit.Max).
		Dur("rate_limit_window", cfg.Messaging.RateLimit.Window).
		Msg("Messaging initialized")

	return mc, nil
}
