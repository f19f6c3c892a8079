// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultRefreshTimeout  = time.Minute
)

// CatalogRefresher reloads the in-memory restaurant catalog.
// Satisfied by *recommend.Catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// CatalogServiceConfig controls the refresh schedule.
type CatalogServiceConfig struct {
	// RefreshInterval is how often the catalog is reloaded. Default 5m.
	RefreshInterval time.Duration

	// RefreshTimeout bounds a single reload. Default 1m.
	RefreshTimeout time.Duration
}

// CatalogService keeps the recommendation catalog in step with the database.
type CatalogService struct {
	catalog CatalogRefresher
	config  CatalogServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewCatalogService creates a catalog refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogService(catalog CatalogRefresher, cfg CatalogServiceConfig, logger zerolog.Logger) *CatalogService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}
	return &CatalogService{
		catalog: catalog,
		config:  cfg,
		logger:  logger.With().Str("service", "catalog").Logger(),
		name:    "catalog-refresh",
	}
}

// Serve implements suture.Service.
//
// The first load must succeed; otherwise Serve returns the error and the
// supervisor restarts the service with backoff. Later failures keep the
// previous catalog and are retried on the next tick.
func (s *CatalogService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("catalog service starting")

	if err := s.refresh(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled catalog refresh failed")
			}
		}
	}
}

func (s *CatalogService) refresh(ctx context.Context) error {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.RefreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.catalog.Refresh(refreshCtx); err != nil {
		return err
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("catalog refreshed")
	return nil
}

// String implements fmt.Stringer.
func (s *CatalogService) String() string {
	return s.name
}
