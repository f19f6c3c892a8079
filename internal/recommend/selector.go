// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"github.com/tomtom215/tablemap/internal/models"
)

// Selector picks the bounded candidate set for one request. It has no side
// effects.
type Selector struct {
	catalog       *Catalog
	maxRadiusKm   float64
	maxCandidates int
}

// NewSelector creates a Selector over catalog.
func NewSelector(catalog *Catalog, maxRadiusKm float64, maxCandidates int) *Selector {
	return &Selector{
		catalog:       catalog,
		maxRadiusKm:   maxRadiusKm,
		maxCandidates: maxCandidates,
	}
}

// Select returns at most maxCandidates restaurants, excluding every
// restaurant the user blocked. With a location the candidates are those
// within maxRadiusKm, nearest first; without one they are in ascending ID
// order with unknown distance. pref may be nil.
func (s *Selector) Select(pref *models.UserPreference, loc *Location) []Candidate {
	blocked := blockedSet(pref)

	if loc != nil {
		nearby := s.catalog.Nearby(*loc, s.maxRadiusKm)
		out := make([]Candidate, 0, min(len(nearby), s.maxCandidates))
		for _, c := range nearby {
			if len(out) == s.maxCandidates {
				break
			}
			if _, skip := blocked[c.Restaurant.ID]; skip {
				continue
			}
			out = append(out, c)
		}
		return out
	}

	all := s.catalog.All()
	out := make([]Candidate, 0, min(len(all), s.maxCandidates))
	for _, r := range all {
		if len(out) == s.maxCandidates {
			break
		}
		if _, skip := blocked[r.ID]; skip {
			continue
		}
		out = append(out, Candidate{Restaurant: r, DistanceKm: -1})
	}
	return out
}

func blockedSet(pref *models.UserPreference) map[string]struct{} {
	if pref == nil || len(pref.Negative.BlockedRestaurants) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(pref.Negative.BlockedRestaurants))
	for _, id := range pref.Negative.BlockedRestaurants {
		set[id] = struct{}{}
	}
	return set
}
