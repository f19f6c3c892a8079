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

// GetUser returns a user or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, id string) (u *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "users", start, err) }(time.Now())

	u = &models.User{}
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, username, profile_image, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.ProfileImage, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// UpsertUser creates a user or updates its display fields. CreatedAt is
// set on first insert and kept afterwards.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("upsert", "users", start, err) }(time.Now())

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = dbTime(u.CreatedAt)

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, username, profile_image, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			profile_image = EXCLUDED.profile_image`,
		u.ID, u.Username, u.ProfileImage, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}
	return nil
}
