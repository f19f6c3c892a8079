// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"time"

	"github.com/tomtom215/tablemap/internal/cache"
	"github.com/tomtom215/tablemap/internal/models"
)

// Signal constants. Each signal is clamped to [0,100] after summing.
const (
	visitSameCategoryPoints = 10.0
	visitSameCategoryCap    = 40.0
	visitNearbyPoints       = 10.0
	visitNearbyCap          = 30.0
	visitNearbyRadiusKm     = 2.0
	visitRevisitBonus       = 20.0
	visitRatingMultiplier   = 6.0

	likeStrengthPoints = 10.0
	likeSharedTagsMin  = 2

	friendPoints         = 10.0
	closeFriendPoints    = 20.0
	groupVisitBonus      = 15.0
	groupSatisfactionMin = 3

	mealPreferenceBonus = 30.0
	openBonus           = 40.0
	closedPenalty       = -20.0
	popularTimeFactor   = 0.3

	companionCategoryBonus   = 40.0
	companionAtmosphereBonus = 20.0

	seasonCategoryBonus = 50.0
	seasonDishBonus     = 25.0

	trendingScale = 50.0

	noLocationDistanceScore = 50.0
)

// curatorTypeWeights multiply a curator's trust score.
var curatorTypeWeights = map[models.CuratorType]float64{
	models.CuratorExpert:     1.5,
	models.CuratorYoutuber:   1.3,
	models.CuratorInfluencer: 1.2,
	models.CuratorLocal:      1.1,
	models.CuratorFriend:     1.0,
}

// Lookup resolves a restaurant by ID. It returns false for unknown IDs.
type Lookup func(id string) (*models.Restaurant, bool)

// Input is everything the signals need to score one candidate.
type Input struct {
	Restaurant *models.Restaurant
	Preference *models.UserPreference

	// At is the request time in the zone whose wall clock drives meal times.
	At        time.Time
	Companion models.Companion
	// DistanceKm is -1 when the request has no location.
	DistanceKm float64

	// Curators endorsing this restaurant.
	Curators []models.CuratorEndorsement
	// Engagement is nil when no engagement data exists.
	Engagement *models.EngagementCounts

	// Lookup resolves visited and liked restaurants. May be nil.
	Lookup Lookup
}

func (in *Input) lookup(id string) (*models.Restaurant, bool) {
	if in.Lookup == nil {
		return nil, false
	}
	return in.Lookup(id)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func gamePreferenceSignal(in *Input) float64 {
	gw := in.Preference.GameWeights
	r := in.Restaurant

	score := gw.Cuisine[r.Category] + gw.Price[r.PriceRange]
	for _, a := range r.Atmosphere {
		score += gw.Atmosphere[a]
	}
	score += gw.Spicy * float64(r.SpicyLevel)
	return clamp(score)
}

func visitHistorySignal(in *Input) float64 {
	r := in.Restaurant
	var sameCategory, nearby, ratingSum float64
	var rated int
	revisited := false

	for _, v := range in.Preference.Visits {
		matched := false
		if v.RestaurantID == r.ID {
			revisited = true
			matched = true
		}
		if visited, ok := in.lookup(v.RestaurantID); ok {
			if visited.Category == r.Category {
				sameCategory += visitSameCategoryPoints
				matched = true
			}
			if visited.HasLocation() && r.HasLocation() &&
				cache.Haversine(visited.Lat, visited.Lng, r.Lat, r.Lng) <= visitNearbyRadiusKm {
				nearby += visitNearbyPoints
				matched = true
			}
		}
		if matched && v.Rating > 0 {
			ratingSum += v.Rating
			rated++
		}
	}

	score := min(sameCategory, visitSameCategoryCap) + min(nearby, visitNearbyCap)
	if revisited {
		score += visitRevisitBonus
	}
	if rated > 0 {
		score += ratingSum / float64(rated) * visitRatingMultiplier
	}
	return clamp(score)
}

func followingCuratorsSignal(in *Input) float64 {
	if len(in.Curators) == 0 || len(in.Preference.Following) == 0 {
		return 0
	}

	following := make(map[string]models.Follow, len(in.Preference.Following))
	for _, f := range in.Preference.Following {
		following[f.CuratorID] = f
	}

	var score float64
	for _, e := range in.Curators {
		f, ok := following[e.CuratorID]
		if !ok {
			continue
		}
		trust := f.TrustScore
		if trust == 0 {
			trust = e.TrustScore
		}
		curatorType := f.CuratorType
		if curatorType == "" {
			curatorType = e.CuratorType
		}
		weight, ok := curatorTypeWeights[curatorType]
		if !ok {
			weight = 1.0
		}
		score += trust * weight
	}
	return clamp(score)
}

func likedPatternSignal(in *Input) float64 {
	r := in.Restaurant
	var score float64

	for _, like := range in.Preference.Likes {
		if like.RestaurantID == r.ID {
			score += like.Strength * likeStrengthPoints
			continue
		}
		liked, ok := in.lookup(like.RestaurantID)
		if !ok {
			continue
		}
		if liked.Category == r.Category ||
			liked.PriceRange == r.PriceRange ||
			sharedCount(liked.Tags, r.Tags) >= likeSharedTagsMin {
			score += like.Strength * likeStrengthPoints
		}
	}
	return clamp(score)
}

func socialInfluenceSignal(in *Input) float64 {
	social := in.Preference.Social
	fl := social.FriendsLiked[in.Restaurant.ID]

	score := float64(fl.Friends)*friendPoints + float64(fl.CloseFriends)*closeFriendPoints
	for _, gv := range social.GroupVisits {
		if gv.RestaurantID == in.Restaurant.ID && gv.Satisfaction > groupSatisfactionMin {
			score += groupVisitBonus
		}
	}
	return clamp(score)
}

func timeContextSignal(in *Input) float64 {
	meal := MealTimeAt(in.At)
	var score float64

	if in.Preference.TimePreferences[meal] {
		score += mealPreferenceBonus
	}
	if open, known := in.Restaurant.Hours.IsOpenAt(in.At); known {
		if open {
			score += openBonus
		} else {
			score += closedPenalty
		}
	}
	score += in.Restaurant.PopularTimes[meal] * popularTimeFactor
	return clamp(score)
}

func companionContextSignal(in *Input) float64 {
	if in.Companion == "" {
		return 0
	}
	cp, ok := in.Preference.Companions[in.Companion]
	if !ok {
		return 0
	}

	var score float64
	for _, c := range cp.Categories {
		if c == in.Restaurant.Category {
			score += companionCategoryBonus
			break
		}
	}
	score += float64(sharedCount(cp.Atmospheres, in.Restaurant.Atmosphere)) * companionAtmosphereBonus
	return clamp(score)
}

func seasonalContextSignal(in *Input) float64 {
	sp, ok := in.Preference.Seasons[SeasonAt(in.At)]
	if !ok {
		return 0
	}

	var score float64
	for _, c := range sp.Categories {
		if c == in.Restaurant.Category {
			score += seasonCategoryBonus
			break
		}
	}
	score += float64(sharedCount(sp.Dishes, in.Restaurant.SignatureDishes)) * seasonDishBonus
	return clamp(score)
}

func trendingSignal(in *Input) float64 {
	if in.Engagement == nil || in.Engagement.Recent == 0 {
		return 0
	}
	previous := max(1, in.Engagement.Previous)
	return clamp(float64(in.Engagement.Recent) / float64(previous) * trendingScale)
}

func distanceSignal(in *Input) float64 {
	d := in.DistanceKm
	switch {
	case d < 0:
		return noLocationDistanceScore
	case d < 0.5:
		return 100
	case d < 1:
		return 80
	case d < 2:
		return 60
	case d < 5:
		return 40
	case d < 10:
		return 20
	default:
		return 0
	}
}

// MealTimeAt returns the meal-time bucket for the wall-clock hour of t.
func MealTimeAt(t time.Time) models.MealTime {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return models.MealBreakfast
	case h >= 11 && h < 14:
		return models.MealLunch
	case h >= 14 && h < 17:
		return models.MealAfternoon
	case h >= 17 && h < 22:
		return models.MealDinner
	default:
		return models.MealLateNight
	}
}

// SeasonAt returns the meteorological season for the month of t.
func SeasonAt(t time.Time) models.Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return models.SeasonSpring
	case time.June, time.July, time.August:
		return models.SeasonSummer
	case time.September, time.October, time.November:
		return models.SeasonAutumn
	default:
		return models.SeasonWinter
	}
}

// sharedCount counts distinct values of a that also appear in b.
func sharedCount[T comparable](a, b []T) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[T]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	n := 0
	for _, v := range a {
		if _, ok := set[v]; ok {
			n++
			delete(set, v)
		}
	}
	return n
}
