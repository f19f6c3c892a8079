// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"github.com/tomtom215/tablemap/internal/models"
)

const (
	// explanationThreshold is the raw signal value a signal must exceed
	// to be mentioned in the explanation.
	explanationThreshold = 30.0
	maxExplanations      = 3

	// GenericExplanation is used when no signal is strong enough.
	GenericExplanation = "a new discovery for you"
)

var explanationPhrases = [numSignals]string{
	SignalGamePreference:    "matches your taste profile",
	SignalVisitHistory:      "similar to places you've enjoyed",
	SignalFollowingCurators: "recommended by curators you follow",
	SignalLikedPattern:      "similar to restaurants you liked",
	SignalSocialInfluence:   "popular with your friends",
	SignalTimeContext:       "great for this time of day",
	SignalCompanionContext:  "good fit for your company",
	SignalSeasonalContext:   "perfect for the season",
	SignalTrending:          "trending right now",
	SignalDistance:          "close to you",
}

// Scorer computes the ten-signal breakdown and weighted total.
// It is stateless apart from its weights and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns the weighted total in [0,100] and the per-signal breakdown.
// Missing optional data contributes zero and never fails.
func (s *Scorer) Score(in *Input) (float64, Breakdown) {
	pref := in.Preference
	if pref == nil {
		pref = &models.UserPreference{}
	}
	scoped := *in
	scoped.Preference = pref

	b := Breakdown{
		GamePreference:    gamePreferenceSignal(&scoped),
		VisitHistory:      visitHistorySignal(&scoped),
		FollowingCurators: followingCuratorsSignal(&scoped),
		LikedPattern:      likedPatternSignal(&scoped),
		SocialInfluence:   socialInfluenceSignal(&scoped),
		TimeContext:       timeContextSignal(&scoped),
		CompanionContext:  companionContextSignal(&scoped),
		SeasonalContext:   seasonalContextSignal(&scoped),
		Trending:          trendingSignal(&scoped),
		Distance:          distanceSignal(&scoped),
	}
	return clamp(s.weights.Apply(&b)), b
}

// Explain returns up to three phrases for the strongest signals above the
// threshold, strongest first. Equal values keep signal declaration order.
// Without a known distance the distance signal holds a placeholder and is
// never explained.
func Explain(b *Breakdown, distanceKnown bool) []string {
	var picked [maxExplanations]Signal
	n := 0

	for s := Signal(0); s < numSignals; s++ {
		if s == SignalDistance && !distanceKnown {
			continue
		}
		v := b.Get(s)
		if v <= explanationThreshold {
			continue
		}
		// Insertion into a descending list; strict > keeps earlier signals first on ties
		pos := n
		for pos > 0 && v > b.Get(picked[pos-1]) {
			pos--
		}
		if pos >= maxExplanations {
			continue
		}
		end := min(n, maxExplanations-1)
		copy(picked[pos+1:end+1], picked[pos:end])
		picked[pos] = s
		if n < maxExplanations {
			n++
		}
	}

	if n == 0 {
		return []string{GenericExplanation}
	}
	phrases := make([]string, n)
	for i := 0; i < n; i++ {
		phrases[i] = explanationPhrases[picked[i]]
	}
	return phrases
}
