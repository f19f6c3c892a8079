// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package logging provides centralized zerolog-based logging for Tablemap.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("push failed")
//
// Context helpers attach request_id, user_id and channel_id to every line
// emitted through Ctx. Component loggers are created with WithComponent.
//
// # slog Bridge
//
// NewSlogLogger returns a *slog.Logger writing through zerolog. The
// supervisor tree uses it for sutureslog event hooks.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
