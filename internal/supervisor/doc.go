// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package supervisor provides the suture v4 process supervision tree.

The tree has three layers under a root supervisor named "tablemap":

	tablemap (root)
	├── data-layer       catalog refresh, recommendation log, kv store
	├── messaging-layer  WebSocket hub, fanout relay
	└── api-layer        HTTP server

Each layer restarts its own failing services with exponential backoff.
Supervisor events are logged through sutureslog into the slog bridge of
internal/logging.

Service wrappers live in the services subpackage.
*/
package supervisor
