// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tomtom215/tablemap/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestTreeConfigFrom(t *testing.T) {
	cfg := TreeConfigFrom(config.SupervisorConfig{
		FailureThreshold: 3,
		FailureBackoff:   time.Second,
		ShutdownTimeout:  2 * time.Second,
	})

	tree, err := NewSupervisorTree(quietLogger(), cfg)
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.config.FailureThreshold != 3 || tree.config.FailureBackoff != time.Second {
		t.Errorf("config = %+v, want threshold 3 and backoff 1s", tree.config)
	}
	if tree.config.FailureDecay != 30 {
		t.Errorf("FailureDecay = %v, want default 30", tree.config.FailureDecay)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	catalog := newMockService("catalog-refresh", 0)
	hub := newMockService("websocket-hub", 0)
	relay := newMockService("fanout-relay", 0)
	httpSvc := newMockService("http-server", 0)

	tree.AddDataService(catalog)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(relay)
	tree.AddAPIService(httpSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	started := waitFor(func() bool {
		return catalog.starts() > 0 && hub.starts() > 0 && relay.starts() > 0 && httpSvc.starts() > 0
	}, time.Second)
	if !started {
		t.Errorf("not all services started: catalog=%d hub=%d relay=%d http=%d",
			catalog.starts(), hub.starts(), relay.starts(), httpSvc.starts())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_FailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newMockService("fanout-relay", 3)
	stableAPI := newMockService("http-server", 0)
	tree.AddMessagingService(flaky)
	tree.AddAPIService(stableAPI)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	if !waitFor(func() bool { return flaky.starts() >= 4 }, 2*time.Second) {
		t.Errorf("flaky service started %d times, want at least 4", flaky.starts())
	}
	if stableAPI.starts() != 1 {
		t.Errorf("api service started %d times, want exactly 1", stableAPI.starts())
	}

	cancel()
	<-errCh
}
