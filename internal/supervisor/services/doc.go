// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package services provides suture.Service wrappers for Tablemap components.

Each wrapper translates a component's own lifecycle (ListenAndServe, Start and
Shutdown, a periodic job, a Close method) into suture's context-aware Serve
pattern, so the supervisor tree in internal/supervisor can restart it with
backoff when it fails.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server and drains connections on shutdown

Catalog Refresh (CatalogService):
  - Loads the restaurant catalog on start and reloads it on an interval
  - A failed initial load fails Serve so the supervisor retries with backoff

WebSocket Hub (HubService):
  - Runs the connection hub that owns live client sessions

Fanout Relay (RelayService):
  - Starts the cross-node delivery relay (embedded NATS, Watermill router)
  - Shuts it down with a fresh context once the tree stops

Closers (CloserService):
  - Holds a resource open while the tree runs and closes it on shutdown
  - Used for the recommendation log writer and the key-value store

# Usage

	tree, _ := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCatalogService(catalog, services.CatalogServiceConfig{
	    RefreshInterval: 5 * time.Minute,
	}, logger))
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

Every wrapper implements fmt.Stringer; suture uses the name in its event log.
*/
package services
