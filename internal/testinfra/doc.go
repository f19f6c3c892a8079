// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests.
// All files are behind the integration build tag:
//
//	go test -tags integration ./...
//
// # Redis Container
//
// StartRedis runs a disposable Redis for exercising the shared key-value
// backend used by the connection registry and rate limiter:
//
//	func TestRedisStore(t *testing.T) {
//	    rc := testinfra.StartRedis(t)
//	    client, err := kv.NewRedisClient(config.RedisConfig{URL: rc.URL})
//	    ...
//	}
//
// Tests skip automatically when Docker is not available.
package testinfra
