// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import (
	"time"
)

// MealTime is a time-of-day bucket.
type MealTime string

const (
	MealBreakfast MealTime = "breakfast"
	MealLunch     MealTime = "lunch"
	MealAfternoon MealTime = "afternoon"
	MealDinner    MealTime = "dinner"
	MealLateNight MealTime = "latenight"
)

// Companion describes who the user is dining with.
type Companion string

const (
	CompanionAlone    Companion = "alone"
	CompanionCouple   Companion = "couple"
	CompanionFriends  Companion = "friends"
	CompanionFamily   Companion = "family"
	CompanionBusiness Companion = "business"
)

// Valid reports whether c is a known companion type.
func (c Companion) Valid() bool {
	switch c {
	case CompanionAlone, CompanionCouple, CompanionFriends, CompanionFamily, CompanionBusiness:
		return true
	}
	return false
}

// Season is a three-month season bucket.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// UserPreference is the accumulated taste profile of one user.
//
// It is created on the first interaction and only ever grows, except for
// Negative.BlockedRestaurants which shrinks on unblock.
type UserPreference struct {
	UserID          string                            `json:"userId"`
	GameWeights     GameWeights                       `json:"gameWeights"`
	Visits          []Visit                           `json:"visits,omitempty"`
	Likes           []Like                            `json:"likes,omitempty"`
	Following       []Follow                          `json:"following,omitempty"`
	Social          SocialSignals                     `json:"social"`
	TimePreferences map[MealTime]bool                 `json:"timePreferences,omitempty"`
	Companions      map[Companion]CompanionPreference `json:"companions,omitempty"`
	Seasons         map[Season]SeasonPreference       `json:"seasons,omitempty"`
	Negative        NegativeSignals                   `json:"negativeSignals"`
	CreatedAt       time.Time                         `json:"createdAt"`
	UpdatedAt       time.Time                         `json:"updatedAt"`
}

// GameWeights are the explicit taste weights set through the preference game.
// Values are score points added when a restaurant matches.
type GameWeights struct {
	Cuisine    map[Category]float64   `json:"cuisine,omitempty"`
	Price      map[PriceRange]float64 `json:"price,omitempty"`
	Atmosphere map[string]float64     `json:"atmosphere,omitempty"`
	Spicy      float64                `json:"spicy"` // points per spicy level
}

// Visit is one recorded visit, oldest first in UserPreference.Visits.
type Visit struct {
	RestaurantID string    `json:"restaurantId"`
	Rating       float64   `json:"rating"` // 0-5, 0 = unrated
	VisitedAt    time.Time `json:"visitedAt"`
}

// Like is a liked restaurant with a strength weight.
type Like struct {
	RestaurantID string    `json:"restaurantId"`
	Strength     float64   `json:"strength"`
	LikedAt      time.Time `json:"likedAt"`
}

// Follow is a followed curator.
type Follow struct {
	CuratorID   string      `json:"curatorId"`
	TrustScore  float64     `json:"trustScore"` // 0-100
	CuratorType CuratorType `json:"curatorType"`
	FollowedAt  time.Time   `json:"followedAt"`
}

// SocialSignals holds friend activity relevant to scoring.
type SocialSignals struct {
	FriendsLiked map[string]FriendLikes `json:"friendsLiked,omitempty"` // by restaurant ID
	GroupVisits  []GroupVisit           `json:"groupVisits,omitempty"`
}

// FriendLikes counts friends who liked a restaurant.
type FriendLikes struct {
	Friends      int `json:"friends"`
	CloseFriends int `json:"closeFriends"`
}

// GroupVisit is a visit made together with friends.
type GroupVisit struct {
	RestaurantID string    `json:"restaurantId"`
	Satisfaction int       `json:"satisfaction"` // 1-5
	VisitedAt    time.Time `json:"visitedAt"`
}

// CompanionPreference lists what the user prefers with a given companion.
type CompanionPreference struct {
	Categories  []Category `json:"categories,omitempty"`
	Atmospheres []string   `json:"atmospheres,omitempty"`
}

// SeasonPreference lists what the user prefers in a given season.
type SeasonPreference struct {
	Categories []Category `json:"categories,omitempty"`
	Dishes     []string   `json:"dishes,omitempty"`
}

// NegativeSignals holds exclusions.
type NegativeSignals struct {
	BlockedRestaurants []string `json:"blockedRestaurants,omitempty"`
}

// IsBlocked reports whether restaurantID is on the user's block list.
func (p *UserPreference) IsBlocked(restaurantID string) bool {
	for _, id := range p.Negative.BlockedRestaurants {
		if id == restaurantID {
			return true
		}
	}
	return false
}
