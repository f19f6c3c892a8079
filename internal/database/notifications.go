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

const notificationColumns = `id, recipient_id, sender_id, type, message, related_id, related_type, is_read, read_at, created_at`

// CreateNotification inserts an unread notification.
func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "notifications", start, err) }(time.Now())

	n.CreatedAt = dbTime(n.CreatedAt)
	n.Read = false
	n.ReadAt = nil

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, false, NULL, ?)`,
		n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Message, n.RelatedID, n.RelatedType, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
	}
	return nil
}

// GetNotification returns one notification or ErrNotFound.
func (db *DB) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	return n, nil
}

// ListNotifications returns a recipient's notifications, newest first.
func (db *DB) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) (list []models.Notification, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "notifications", start, err) }(time.Now())

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer closeWithLog(rows, "rows")

	list = []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return list, nil
}

// UnreadNotificationCount counts a recipient's unread notifications.
func (db *DB) UnreadNotificationCount(ctx context.Context, recipientID string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND NOT is_read`,
		recipientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(n), nil
}

// MarkNotificationRead sets the read flag once. Marking an already-read
// notification leaves its ReadAt untouched.
func (db *DB) MarkNotificationRead(ctx context.Context, id string, at time.Time) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("update", "notifications", start, err) }(time.Now())

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE notifications SET is_read = true, read_at = ? WHERE id = ? AND NOT is_read`,
			dbTime(at), id)
		if err != nil {
			return fmt.Errorf("failed to mark notification %s read: %w", id, err)
		}
		return nil
	})
}

// MarkAllNotificationsRead marks every unread notification of a recipient
// read in one statement and returns how many changed.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("update", "notifications", start, err) }(time.Now())

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE notifications SET is_read = true, read_at = ? WHERE recipient_id = ? AND NOT is_read`,
			dbTime(at), recipientID)
		if err != nil {
			return fmt.Errorf("failed to mark notifications read: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		count = int(affected)
		return nil
	})
	return count, err
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var notificationType string
	var readAt sql.NullTime
	if err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &notificationType, &n.Message,
		&n.RelatedID, &n.RelatedType, &n.Read, &readAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(notificationType)
	n.CreatedAt = n.CreatedAt.UTC()
	if readAt.Valid {
		t := readAt.Time.UTC()
		n.ReadAt = &t
	}
	return &n, nil
}
