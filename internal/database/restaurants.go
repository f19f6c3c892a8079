// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

const restaurantColumns = `id, name, category, price_range, atmosphere, tags, lat, lng, address,
	signature_dishes, spicy_level, hours, popular_times, average_rating, review_count`

// ListRestaurants returns the whole catalog ordered by ID.
func (db *DB) ListRestaurants(ctx context.Context) (restaurants []models.Restaurant, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "restaurants", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant or ErrNotFound.
func (db *DB) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	r, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
	}
	return r, err
}

// UpsertRestaurant inserts or replaces a restaurant.
func (db *DB) UpsertRestaurant(ctx context.Context, r *models.Restaurant) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("upsert", "restaurants", start, err) }(time.Now())

	cols, err := encodeRestaurantColumns(r)
	if err != nil {
		return fmt.Errorf("failed to encode restaurant %s: %w", r.ID, err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price_range = EXCLUDED.price_range,
			atmosphere = EXCLUDED.atmosphere,
			tags = EXCLUDED.tags,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			address = EXCLUDED.address,
			signature_dishes = EXCLUDED.signature_dishes,
			spicy_level = EXCLUDED.spicy_level,
			hours = EXCLUDED.hours,
			popular_times = EXCLUDED.popular_times,
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at`,
		r.ID, r.Name, string(r.Category), string(r.PriceRange), cols.atmosphere, cols.tags,
		r.Lat, r.Lng, r.Address, cols.dishes, r.SpicyLevel, cols.hours, cols.popularTimes,
		r.AverageRating, r.ReviewCount, dbTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert restaurant %s: %w", r.ID, err)
	}
	return nil
}

type restaurantJSON struct {
	atmosphere   string
	tags         string
	dishes       string
	hours        sql.NullString
	popularTimes string
}

func encodeRestaurantColumns(r *models.Restaurant) (restaurantJSON, error) {
	var cols restaurantJSON
	var err error

	if cols.atmosphere, err = encodeJSON(nonNil(r.Atmosphere)); err != nil {
		return cols, err
	}
	if cols.tags, err = encodeJSON(nonNil(r.Tags)); err != nil {
		return cols, err
	}
	if cols.dishes, err = encodeJSON(nonNil(r.SignatureDishes)); err != nil {
		return cols, err
	}
	popular := r.PopularTimes
	if popular == nil {
		popular = map[models.MealTime]float64{}
	}
	if cols.popularTimes, err = encodeJSON(popular); err != nil {
		return cols, err
	}
	if r.Hours != nil {
		hours, err := encodeJSON(r.Hours)
		if err != nil {
			return cols, err
		}
		cols.hours = sql.NullString{String: hours, Valid: true}
	}
	return cols, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	var r models.Restaurant
	var category, priceRange string
	var cols restaurantJSON

	err := row.Scan(&r.ID, &r.Name, &category, &priceRange, &cols.atmosphere, &cols.tags,
		&r.Lat, &r.Lng, &r.Address, &cols.dishes, &r.SpicyLevel, &cols.hours, &cols.popularTimes,
		&r.AverageRating, &r.ReviewCount)
	if err != nil {
		return nil, err
	}
	r.Category = models.Category(category)
	r.PriceRange = models.PriceRange(priceRange)

	if err := decodeJSON(cols.atmosphere, &r.Atmosphere); err != nil {
		return nil, fmt.Errorf("restaurant %s atmosphere: %w", r.ID, err)
	}
	if err := decodeJSON(cols.tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("restaurant %s tags: %w", r.ID, err)
	}
	if err := decodeJSON(cols.dishes, &r.SignatureDishes); err != nil {
		return nil, fmt.Errorf("restaurant %s signature dishes: %w", r.ID, err)
	}
	if err := decodeJSON(cols.popularTimes, &r.PopularTimes); err != nil {
		return nil, fmt.Errorf("restaurant %s popular times: %w", r.ID, err)
	}
	if cols.hours.Valid {
		r.Hours = &models.BusinessHours{}
		if err := decodeJSON(cols.hours.String, r.Hours); err != nil {
			return nil, fmt.Errorf("restaurant %s hours: %w", r.ID, err)
		}
	}
	return &r, nil
}
