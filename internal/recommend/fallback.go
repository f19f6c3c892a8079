// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"sort"
)

const (
	// FallbackExplanation is the fixed explanation for popularity results.
	FallbackExplanation = "popular restaurant"

	fallbackRatingScale = 20.0
)

// fallback ranks restaurants by rating for users with no preference record.
//
// Candidates are geo-filtered when the request has a location, then ordered
// by average rating and review count, both descending. The score is the
// rating scaled to 0-100 and the confidence is always medium.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) fallback(rc Context, limit int) *Result {
	var candidates []Candidate
	if rc.Location != nil {
		candidates = e.catalog.Nearby(*rc.Location, e.config.MaxRadiusKm)
	} else {
		all := e.catalog.All()
		candidates = make([]Candidate, len(all))
		for i, r := range all {
			candidates[i] = Candidate{Restaurant: r, DistanceKm: -1}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Restaurant, candidates[j].Restaurant
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.ReviewCount > b.ReviewCount
	})

	total := len(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recs := make([]ScoredRecommendation, len(candidates))
	for i, c := range candidates {
		recs[i] = ScoredRecommendation{
			Restaurant:  c.Restaurant,
			TotalScore:  clamp(c.Restaurant.AverageRating * fallbackRatingScale),
			Explanation: []string{FallbackExplanation},
			Confidence:  ConfidenceMedium,
			Distance:    c.DistanceKm,
		}
	}

	return &Result{
		Recommendations: recs,
		Fallback:        true,
		TotalCandidates: total,
	}
}
