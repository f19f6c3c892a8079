// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package services

import (
	"context"
	"fmt"
	"time"
)

// RelayRunner is the Start/Shutdown lifecycle of the cross-node fanout relay.
// Satisfied by *websocket.Relay.
type RelayRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// RelayService adapts a RelayRunner to suture.
//
// Start brings up the embedded NATS server (when configured), the Watermill
// router and the subscriber that forwards remote pushes to local sessions.
type RelayService struct {
	relay           RelayRunner
	shutdownTimeout time.Duration
	name            string
}

// NewRelayService wraps relay. A non-positive shutdownTimeout uses 10s.
func NewRelayService(relay RelayRunner, shutdownTimeout time.Duration) *RelayService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &RelayService{
		relay:           relay,
		shutdownTimeout: shutdownTimeout,
		name:            "fanout-relay",
	}
}

// Serve implements suture.Service. A Start error is returned at once so the
// supervisor restarts the relay with backoff.
func (s *RelayService) Serve(ctx context.Context) error {
	if err := s.relay.Start(ctx); err != nil {
		return fmt.Errorf("fanout relay start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.relay.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *RelayService) String() string {
	return s.name
}
