// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

// ErrInvalidContext is returned when the request context is malformed.
var ErrInvalidContext = errors.New("recommend: invalid context")

// Location is a WGS84 coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Context carries the situational inputs of a recommendation request.
// Every field is optional.
type Context struct {
	// Location restricts candidates to a radius around the user.
	Location *Location `json:"location,omitempty"`

	// Companion is who the user is dining with.
	Companion models.Companion `json:"companion,omitempty"`

	// CurrentTime drives the meal-time and season signals.
	// Zero means now.
	CurrentTime time.Time `json:"currentTime,omitempty"`
}

// Validate checks coordinate ranges and the companion enum.
func (c Context) Validate() error {
	if c.Location != nil {
		if c.Location.Lat < -90 || c.Location.Lat > 90 {
			return fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidContext, c.Location.Lat)
		}
		if c.Location.Lng < -180 || c.Location.Lng > 180 {
			return fmt.Errorf("%w: longitude %.6f out of range", ErrInvalidContext, c.Location.Lng)
		}
	}
	if c.Companion != "" && !c.Companion.Valid() {
		return fmt.Errorf("%w: unknown companion %q", ErrInvalidContext, c.Companion)
	}
	return nil
}

// Signal identifies one of the ten scoring signals.
// The declaration order is the tie-break order for explanations.
type Signal int

const (
	SignalGamePreference Signal = iota
	SignalVisitHistory
	SignalFollowingCurators
	SignalLikedPattern
	SignalSocialInfluence
	SignalTimeContext
	SignalCompanionContext
	SignalSeasonalContext
	SignalTrending
	SignalDistance

	numSignals
)

// String returns the signal's wire name.
func (s Signal) String() string {
	switch s {
	case SignalGamePreference:
		return "gamePreference"
	case SignalVisitHistory:
		return "visitHistory"
	case SignalFollowingCurators:
		return "followingCurators"
	case SignalLikedPattern:
		return "likedPattern"
	case SignalSocialInfluence:
		return "socialInfluence"
	case SignalTimeContext:
		return "timeContext"
	case SignalCompanionContext:
		return "companionContext"
	case SignalSeasonalContext:
		return "seasonalContext"
	case SignalTrending:
		return "trending"
	case SignalDistance:
		return "distance"
	default:
		return "unknown"
	}
}

// Breakdown holds the raw value of each signal, each in [0,100].
type Breakdown struct {
	GamePreference    float64 `json:"gamePreference"`
	VisitHistory      float64 `json:"visitHistory"`
	FollowingCurators float64 `json:"followingCurators"`
	LikedPattern      float64 `json:"likedPattern"`
	SocialInfluence   float64 `json:"socialInfluence"`
	TimeContext       float64 `json:"timeContext"`
	CompanionContext  float64 `json:"companionContext"`
	SeasonalContext   float64 `json:"seasonalContext"`
	Trending          float64 `json:"trending"`
	Distance          float64 `json:"distance"`
}

// Get returns the value of signal s.
func (b *Breakdown) Get(s Signal) float64 {
	switch s {
	case SignalGamePreference:
		return b.GamePreference
	case SignalVisitHistory:
		return b.VisitHistory
	case SignalFollowingCurators:
		return b.FollowingCurators
	case SignalLikedPattern:
		return b.LikedPattern
	case SignalSocialInfluence:
		return b.SocialInfluence
	case SignalTimeContext:
		return b.TimeContext
	case SignalCompanionContext:
		return b.CompanionContext
	case SignalSeasonalContext:
		return b.SeasonalContext
	case SignalTrending:
		return b.Trending
	case SignalDistance:
		return b.Distance
	default:
		return 0
	}
}

// Confidence is a coarse tier derived from the total score.
type Confidence string

const (
	ConfidenceVeryHigh Confidence = "very_high"
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
	ConfidenceVeryLow  Confidence = "very_low"
)

// ConfidenceFor maps a total score to its tier.
func ConfidenceFor(total float64) Confidence {
	switch {
	case total >= 80:
		return ConfidenceVeryHigh
	case total >= 60:
		return ConfidenceHigh
	case total >= 40:
		return ConfidenceMedium
	case total >= 20:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ScoredRecommendation is one ranked result.
type ScoredRecommendation struct {
	Restaurant  *models.Restaurant `json:"restaurant"`
	TotalScore  float64            `json:"totalScore"`
	Breakdown   Breakdown          `json:"breakdown"`
	Explanation []string           `json:"explanation"`
	Confidence  Confidence         `json:"confidence"`
	// Distance is in km from the request location, -1 when unknown.
	Distance float64 `json:"distance"`
}

// Result is the response of Engine.GetRecommendations.
type Result struct {
	Recommendations []ScoredRecommendation `json:"recommendations"`
	// Fallback is true when the user had no preference record.
	Fallback        bool      `json:"fallback"`
	TotalCandidates int       `json:"totalCandidates"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Candidate is a restaurant eligible for scoring.
type Candidate struct {
	Restaurant *models.Restaurant
	// DistanceKm is -1 when the request has no location.
	DistanceKm float64
}
