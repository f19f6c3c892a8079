// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"time"

	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
)

// RecommendationsRequest represents the validated query parameters for
// GET /api/v1/recommendations. Lat and Lng must be given together.
type RecommendationsRequest struct {
	Lat       *float64         `json:"lat" validate:"omitempty,latitude"`
	Lng       *float64         `json:"lng" validate:"omitempty,longitude"`
	Companion models.Companion `json:"companion" validate:"omitempty,enum"`
	Time      string           `json:"time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit     int              `json:"limit" validate:"min=0,max=1000"`
}

// GameWeightsRequest replaces the explicit cuisine, price, atmosphere and
// spice weights.
type GameWeightsRequest struct {
	Cuisine    map[models.Category]float64   `json:"cuisine" validate:"omitempty,max=32,dive,keys,enum,endkeys,min=-100,max=100"`
	Price      map[models.PriceRange]float64 `json:"price" validate:"omitempty,max=8,dive,keys,enum,endkeys,min=-100,max=100"`
	Atmosphere map[string]float64            `json:"atmosphere" validate:"omitempty,max=64,dive,keys,min=1,max=64,endkeys,min=-100,max=100"`
	Spicy      float64                       `json:"spicy" validate:"min=-20,max=20"`
}

func (r *GameWeightsRequest) weights() models.GameWeights {
	return models.GameWeights{
		Cuisine:    r.Cuisine,
		Price:      r.Price,
		Atmosphere: r.Atmosphere,
		Spicy:      r.Spicy,
	}
}

// CompanionPreferenceRequest is one entry of ContextPreferencesRequest.Companions.
type CompanionPreferenceRequest struct {
	Categories  []models.Category `json:"categories" validate:"max=32,dive,enum"`
	Atmospheres []string          `json:"atmospheres" validate:"max=32,dive,min=1,max=64"`
}

// SeasonPreferenceRequest is one entry of ContextPreferencesRequest.Seasons.
type SeasonPreferenceRequest struct {
	Categories []models.Category `json:"categories" validate:"max=32,dive,enum"`
	Dishes     []string          `json:"dishes" validate:"max=32,dive,min=1,max=100"`
}

// ContextPreferencesRequest sets situational preferences. Omitted maps keep
// the stored value.
type ContextPreferencesRequest struct {
	TimePreferences map[models.MealTime]bool                        `json:"timePreferences" validate:"omitempty,dive,keys,oneof=breakfast lunch afternoon dinner latenight,endkeys"`
	Companions      map[models.Companion]CompanionPreferenceRequest `json:"companions" validate:"omitempty,dive,keys,enum,endkeys,required"`
	Seasons         map[models.Season]SeasonPreferenceRequest       `json:"seasons" validate:"omitempty,dive,keys,oneof=spring summer autumn winter,endkeys,required"`
}

func (r *ContextPreferencesRequest) preferences() preference.ContextPreferences {
	cp := preference.ContextPreferences{TimePreferences: r.TimePreferences}
	if r.Companions != nil {
		cp.Companions = make(map[models.Companion]models.CompanionPreference, len(r.Companions))
		for k, v := range r.Companions {
			cp.Companions[k] = models.CompanionPreference{Categories: v.Categories, Atmospheres: v.Atmospheres}
		}
	}
	if r.Seasons != nil {
		cp.Seasons = make(map[models.Season]models.SeasonPreference, len(r.Seasons))
		for k, v := range r.Seasons {
			cp.Seasons[k] = models.SeasonPreference{Categories: v.Categories, Dishes: v.Dishes}
		}
	}
	return cp
}

// VisitRequest records a visit. A zero rating means unrated; a zero
// VisitedAt means now.
type VisitRequest struct {
	RestaurantID string    `json:"restaurantId" validate:"required,max=64"`
	Rating       float64   `json:"rating" validate:"min=0,max=5"`
	VisitedAt    time.Time `json:"visitedAt"`
}

// LikeRequest records a like. A zero strength is stored as 1.
type LikeRequest struct {
	RestaurantID string  `json:"restaurantId" validate:"required,max=64"`
	Strength     float64 `json:"strength" validate:"min=0,max=10"`
}

// FollowRequest follows a curator.
type FollowRequest struct {
	CuratorID   string             `json:"curatorId" validate:"required,max=64"`
	TrustScore  float64            `json:"trustScore" validate:"min=0,max=100"`
	CuratorType models.CuratorType `json:"curatorType" validate:"required,oneof=expert youtuber influencer local friend"`
}

// GroupVisitRequest records a visit made with a group.
type GroupVisitRequest struct {
	RestaurantID string    `json:"restaurantId" validate:"required,max=64"`
	Satisfaction int       `json:"satisfaction" validate:"required,min=1,max=5"`
	VisitedAt    time.Time `json:"visitedAt"`
}

// BlockRequest hides a restaurant from recommendations.
type BlockRequest struct {
	RestaurantID string `json:"restaurantId" validate:"required,max=64"`
}

// ProfileRequest updates the caller's display profile.
type ProfileRequest struct {
	Username     string `json:"username" validate:"required,min=1,max=50"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url,max=500"`
}

// CreateChatRequest creates a chat. The caller is always a participant.
type CreateChatRequest struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	Participants []string `json:"participants" validate:"required,min=1,max=50,dive,required,max=64"`
}

// SendMessageRequest posts a message to the chat named in the path.
// Content length is checked by the dispatcher so that over-long messages
// get their own error code.
type SendMessageRequest struct {
	Content      string             `json:"content" validate:"required"`
	Type         models.MessageType `json:"type" validate:"omitempty,enum"`
	RestaurantID string             `json:"restaurantId" validate:"omitempty,max=64"`
}

// CreateNotificationRequest sends a notification on behalf of the system.
type CreateNotificationRequest struct {
	RecipientID string                  `json:"recipientId" validate:"required,max=64"`
	Type        models.NotificationType `json:"type" validate:"required,enum"`
	Message     string                  `json:"message" validate:"required,max=500"`
	RelatedID   string                  `json:"relatedId" validate:"omitempty,max=64"`
	RelatedType string                  `json:"relatedType" validate:"omitempty,max=32"`
}

// EndorsementRequest records a curator endorsement of a restaurant.
type EndorsementRequest struct {
	CuratorID    string             `json:"curatorId" validate:"required,max=64"`
	RestaurantID string             `json:"restaurantId" validate:"required,max=64"`
	CuratorType  models.CuratorType `json:"curatorType" validate:"required,oneof=expert youtuber influencer local friend"`
	TrustScore   float64            `json:"trustScore" validate:"min=0,max=100"`
}
