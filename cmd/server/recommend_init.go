// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/database"
	"github.com/tomtom215/tablemap/internal/preference"
	"github.com/tomtom215/tablemap/internal/recommend"
	"github.com/tomtom215/tablemap/internal/supervisor"
	"github.com/tomtom215/tablemap/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine    *recommend.Engine
	Catalog   *recommend.Catalog
	RecLogger *recommend.RecLogger
}

// initRecommend builds the catalog and the engine and registers the catalog
// refresh and log writer services in the data layer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(
	cfg *config.Config,
	db *database.DB,
	prefs *preference.Store,
	loc *time.Location,
	logger zerolog.Logger,
	tree *supervisor.SupervisorTree,
) (*RecommendComponents, error) {
	logger.Info().
		Int("max_candidates", cfg.Recommend.MaxCandidates).
		Float64("max_radius_km", cfg.Recommend.MaxRadiusKm).
		Int("workers", cfg.Recommend.Workers).
		Dur("catalog_refresh", cfg.Recommend.CatalogRefresh).
		Msg("initializing recommendation engine")

	catalog := recommend.NewCatalog(db)
	recLogger := recommend.NewRecLogger(db, cfg.Recommend.LogBufferSize)

	engine, err := recommend.NewEngine(
		recommend.ConfigFrom(cfg.Recommend),
		prefs,
		catalog,
		logger,
		recommend.WithCuratorSource(db),
		recommend.WithEngagementSource(db),
		recommend.WithRecLogger(recLogger),
		recommend.WithLocation(loc),
	)
	if err != nil {
		_ = recLogger.Close()
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}

	tree.AddDataService(services.NewCatalogService(catalog, services.CatalogServiceConfig{
		RefreshInterval: cfg.Recommend.CatalogRefresh,
	}, logger))
	tree.AddDataService(services.NewCloserService("recommendation-log", recLogger))

	return &RecommendComponents{
		Engine:    engine,
		Catalog:   catalog,
		RecLogger: recLogger,
	}, nil
}
