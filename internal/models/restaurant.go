// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package models

import (
	"fmt"
	"time"
)

// Category is the fixed cuisine category of a restaurant.
type Category string

const (
	CategoryKorean   Category = "korean"
	CategoryJapanese Category = "japanese"
	CategoryChinese  Category = "chinese"
	CategoryWestern  Category = "western"
	CategoryItalian  Category = "italian"
	CategoryCafe     Category = "cafe"
	CategoryBar      Category = "bar"
	CategoryDessert  Category = "dessert"
	CategoryFastfood Category = "fastfood"
	CategoryOther    Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryKorean, CategoryJapanese, CategoryChinese, CategoryWestern, CategoryItalian,
	CategoryCafe, CategoryBar, CategoryDessert, CategoryFastfood, CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PriceRange is the fixed price bracket of a restaurant.
type PriceRange string

const (
	PriceCheap     PriceRange = "cheap"
	PriceModerate  PriceRange = "moderate"
	PriceExpensive PriceRange = "expensive"
	PriceLuxury    PriceRange = "luxury"
)

// Valid reports whether p is a known price range.
func (p PriceRange) Valid() bool {
	switch p {
	case PriceCheap, PriceModerate, PriceExpensive, PriceLuxury:
		return true
	}
	return false
}

// Restaurant is a catalog entry. The recommendation core only reads it.
//
// Optional fields (Atmosphere, Hours, PopularTimes, coordinates) may be empty;
// scoring treats a missing field as contributing nothing.
type Restaurant struct {
	ID              string               `json:"id" validate:"required,max=64"`
	Name            string               `json:"name" validate:"required,max=200"`
	Category        Category             `json:"category" validate:"required,enum"`
	PriceRange      PriceRange           `json:"priceRange" validate:"required,enum"`
	Atmosphere      []string             `json:"atmosphere,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
	Lat             float64              `json:"lat" validate:"latitude"`
	Lng             float64              `json:"lng" validate:"longitude"`
	Address         string               `json:"address,omitempty"`
	SignatureDishes []string             `json:"signatureDishes,omitempty"`
	SpicyLevel      int                  `json:"spicyLevel" validate:"min=0,max=5"`
	Hours           *BusinessHours       `json:"hours,omitempty"`
	PopularTimes    map[MealTime]float64 `json:"popularTimes,omitempty"`
	AverageRating   float64              `json:"averageRating" validate:"min=0,max=5"`
	ReviewCount     int                  `json:"reviewCount" validate:"min=0"`
}

// HasLocation reports whether the restaurant carries coordinates.
// (0,0) is treated as unset.
func (r *Restaurant) HasLocation() bool {
	return r.Lat != 0 || r.Lng != 0
}

// BusinessHours holds daily opening hours as "HH:MM" strings.
// A Close at or before Open means the restaurant closes after midnight.
type BusinessHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// IsOpenAt reports whether the restaurant is open at the wall-clock time of t.
// ok is false when either bound cannot be parsed.
func (h *BusinessHours) IsOpenAt(t time.Time) (open, ok bool) {
	if h == nil {
		return false, false
	}
	openMin, err := parseClock(h.Open)
	if err != nil {
		return false, false
	}
	closeMin, err := parseClock(h.Close)
	if err != nil {
		return false, false
	}

	now := t.Hour()*60 + t.Minute()
	if closeMin > openMin {
		return now >= openMin && now < closeMin, true
	}
	// Wraps past midnight
	return now >= openMin || now < closeMin, true
}

// parseClock converts "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if hh < 0 || hh > 24 || mm < 0 || mm > 59 || (hh == 24 && mm != 0) {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return hh*60 + mm, nil
}

// CuratorType classifies a curator for trust weighting.
type CuratorType string

const (
	CuratorExpert     CuratorType = "expert"
	CuratorYoutuber   CuratorType = "youtuber"
	CuratorInfluencer CuratorType = "influencer"
	CuratorLocal      CuratorType = "local"
	CuratorFriend     CuratorType = "friend"
)

// CuratorEndorsement records that a curator endorses a restaurant.
type CuratorEndorsement struct {
	CuratorID    string      `json:"curatorId"`
	RestaurantID string      `json:"restaurantId"`
	CuratorType  CuratorType `json:"curatorType"`
	TrustScore   float64     `json:"trustScore"`
}

// EngagementKind is the kind of engagement event counted for trending.
type EngagementKind string

const (
	EngagementLike  EngagementKind = "like"
	EngagementVisit EngagementKind = "visit"
)

// EngagementCounts holds engagement totals for one restaurant over two
// consecutive windows ending at the request time.
type EngagementCounts struct {
	Recent   int `json:"recent"`
	Previous int `json:"previous"`
}
