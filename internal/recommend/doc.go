// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package recommend implements personalized restaurant recommendations.
//
// # Architecture
//
// A request flows through three stages:
//
//   - Candidate selection (Selector): the in-memory Catalog is queried for
//     restaurants within MaxRadiusKm of the request location, nearest first,
//     or in ID order when there is no location. Blocked restaurants are
//     removed and the set is capped at MaxCandidates.
//   - Scoring (Scorer): ten independent signals, each in [0,100], are combined
//     with fixed weights that sum to 1.0, so the total is also in [0,100].
//   - Orchestration (Engine): candidates are scored on a bounded worker pool,
//     stable-sorted by total score, truncated, explained and logged.
//
// Users with no preference record take the popularity fallback instead:
// restaurants ordered by rating and review count with a fixed "medium"
// confidence.
//
// # Signals
//
//	gamePreference     .20  taste weights from the onboarding game
//	visitHistory       .15  same category / same area / revisit / past ratings
//	followingCurators  .15  trust x curator-type weight of followed endorsers
//	likedPattern       .10  like strength of similar liked restaurants
//	socialInfluence    .10  friends, close friends, satisfied group visits
//	timeContext        .10  meal-time preference, opening hours, popular times
//	companionContext   .08  companion-specific categories and atmospheres
//	seasonalContext    .05  seasonal categories and dishes
//	trending           .05  engagement velocity, last 7 days vs the 7 before
//	distance           .02  tiered by km from the request location
//
// # Failure Semantics
//
// Dependency reads (preferences, curators, engagement) pass through a circuit
// breaker. Any failure or a request timeout fails the whole request; there is
// never a partial ranking. The recommendation log is best-effort.
//
// # Usage
//
//	catalog := recommend.NewCatalog(db)
//	_ = catalog.Refresh(ctx)
//	engine, err := recommend.NewEngine(recommend.ConfigFrom(cfg.Recommend), prefs, catalog, logger,
//	    recommend.WithCuratorSource(db),
//	    recommend.WithEngagementSource(db),
//	)
//	result, err := engine.GetRecommendations(ctx, userID, recommend.Context{
//	    Location: &recommend.Location{Lat: 37.5, Lng: 127.0},
//	}, 10)
package recommend
