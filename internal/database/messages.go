// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/models"
)

// CreateMessage inserts a message together with the read markers it
// already carries (the sender's own). Timestamps are normalized in place.
func (db *DB) CreateMessage(ctx context.Context, msg *models.Message) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "messages", start, err) }(time.Now())

	msg.CreatedAt = dbTime(msg.CreatedAt)
	for i := range msg.ReadBy {
		msg.ReadBy[i].ReadAt = dbTime(msg.ReadBy[i].ReadAt)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, chat_id, sender_id, content, type, restaurant_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.ChatID, msg.SenderID, msg.Content, string(msg.Type), msg.RestaurantID, msg.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
		for _, r := range msg.ReadBy {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO message_reads (message_id, user_id, read_at) VALUES (?, ?, ?)`,
				msg.ID, r.UserID, r.ReadAt); err != nil {
				return fmt.Errorf("failed to insert read marker for %s: %w", msg.ID, err)
			}
		}
		return nil
	})
}

// History returns up to limit messages of a chat created strictly before
// `before` (any time when zero), oldest to newest, with read markers.
func (db *DB) History(ctx context.Context, chatID string, before time.Time, limit int) (messages []models.Message, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "messages", start, err) }(time.Now())

	query := `SELECT id, chat_id, sender_id, content, type, restaurant_id, created_at
		FROM messages WHERE chat_id = ?`
	args := []any{chatID}
	if !before.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, dbTime(before))
	}
	// Newest page first, reversed below
	query += ` ORDER BY created_at DESC, seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of %s: %w", chatID, err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var m models.Message
		var msgType string
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &msgType, &m.RestaurantID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Type = models.MessageType(msgType)
		m.CreatedAt = m.CreatedAt.UTC()
		m.ReadBy = []models.ReadMarker{}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if len(messages) == 0 {
		return []models.Message{}, nil
	}
	if err := db.attachReadMarkers(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (db *DB) attachReadMarkers(ctx context.Context, messages []models.Message) error {
	index := make(map[string]int, len(messages))
	ids := make([]string, len(messages))
	for i, m := range messages {
		index[m.ID] = i
		ids[i] = m.ID
	}

	marks, args := placeholders(ids)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT message_id, user_id, read_at FROM message_reads
		WHERE message_id IN (`+marks+`)
		ORDER BY read_at, user_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to query read markers: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var messageID string
		var r models.ReadMarker
		if err := rows.Scan(&messageID, &r.UserID, &r.ReadAt); err != nil {
			return fmt.Errorf("failed to scan read marker: %w", err)
		}
		r.ReadAt = r.ReadAt.UTC()
		if i, ok := index[messageID]; ok {
			messages[i].ReadBy = append(messages[i].ReadBy, r)
		}
	}
	return rows.Err()
}

// UnreadMessageIDs returns up to limit IDs of messages in a chat that
// userID has not read, oldest first.
func (db *DB) UnreadMessageIDs(ctx context.Context, chatID, userID string, limit int) (ids []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "message_reads", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.id FROM messages m
		WHERE m.chat_id = ?
			AND NOT EXISTS (
				SELECT 1 FROM message_reads r
				WHERE r.message_id = m.id AND r.user_id = ?
			)
		ORDER BY m.created_at, m.seq
		LIMIT ?`, chatID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread messages: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unread messages: %w", err)
	}
	return ids, nil
}

// MarkMessagesRead appends a read marker for userID to each message.
// Messages the user already read keep their original marker.
func (db *DB) MarkMessagesRead(ctx context.Context, userID string, messageIDs []string, at time.Time) (err error) {
	if len(messageIDs) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "message_reads", start, err) }(time.Now())

	at = dbTime(at)
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range messageIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO message_reads (message_id, user_id, read_at) VALUES (?, ?, ?)`,
				id, userID, at); err != nil {
				return fmt.Errorf("failed to mark %s read: %w", id, err)
			}
		}
		return nil
	})
}
