// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // message timestamps use a configured zone on minimal images

	_ "github.com/tomtom215/tablemap/docs" // Import generated swagger docs
	"github.com/tomtom215/tablemap/internal/api"
	"github.com/tomtom215/tablemap/internal/auth"
	"github.com/tomtom215/tablemap/internal/authz"
	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/database"
	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/preference"
	"github.com/tomtom215/tablemap/internal/supervisor"
	"github.com/tomtom215/tablemap/internal/supervisor/services"
	ws "github.com/tomtom215/tablemap/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Tablemap with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	stores, err := initStores(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open key-value stores")
	}
	defer stores.Close()

	// The dispatcher config resolves the messaging time zone, which the
	// recommendation engine shares for meal time and season.
	dispatchCfg, err := dispatch.ConfigFrom(cfg.Messaging)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid messaging configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	prefs := preference.New(stores.Preferences)

	rec, err := initRecommend(cfg, db, prefs, dispatchCfg.Location, logging.WithComponent("recommend"), tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendations")
	}

	msg, err := initMessaging(cfg, dispatchCfg, db, stores.State, rec.Catalog, logging.WithComponent("messaging"), tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize messaging")
	}

	// === AUTHENTICATION AND AUTHORIZATION ===

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authMiddleware := auth.NewMiddleware(jwtManager, cfg.Security.AdminUsers)

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.PolicyPath = cfg.Security.AuthzPolicyPath
	enforcer, err := authz.NewEnforcer(enforcerCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	// === HTTP ===

	wsHandler := ws.NewHandler(msg.Hub, msg.Dispatcher, authMiddleware, logging.WithComponent("websocket"),
		ws.WithAllowedOrigins(cfg.Security.CORSOrigins),
		ws.WithClientLimits(ws.ClientLimits{
			SendBuffer:   cfg.Messaging.SendBuffer,
			InboundRate:  cfg.Messaging.InboundRate,
			InboundBurst: cfg.Messaging.InboundBurst,
		}),
	)

	handler := api.NewHandler(api.Deps{
		Recommender: rec.Engine,
		Catalog:     rec.Catalog,
		Preferences: prefs,
		Messenger:   msg.Dispatcher,
		Store:       db,
		Connections: msg.Hub,
		Version:     version,
		NodeID:      msg.NodeID,
	})

	router := api.NewRouter(
		handler,
		authMiddleware,
		authz.NewMiddleware(enforcer),
		api.NewChiMiddlewareFromConfig(&cfg.Security),
		wsHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error). The
	// channel receives exactly one value and is never closed.
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
