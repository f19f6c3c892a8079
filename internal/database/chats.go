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

// CreateChat inserts a chat and its participants. Participant order is kept.
func (db *DB) CreateChat(ctx context.Context, chat *models.Chat) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert", "chats", start, err) }(time.Now())

	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	chat.CreatedAt = dbTime(chat.CreatedAt)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chats (id, name, created_at) VALUES (?, ?, ?)`,
			chat.ID, chat.Name, chat.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert chat %s: %w", chat.ID, err)
		}
		for i, userID := range chat.Participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chat_participants (chat_id, user_id, position) VALUES (?, ?, ?)`,
				chat.ID, userID, i); err != nil {
				return fmt.Errorf("failed to add participant %s to chat %s: %w", userID, chat.ID, err)
			}
		}
		return nil
	})
}

// GetChat returns a chat with its participants or ErrNotFound.
func (db *DB) GetChat(ctx context.Context, chatID string) (chat *models.Chat, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "chats", start, err) }(time.Now())

	chat = &models.Chat{}
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM chats WHERE id = ?`, chatID).
		Scan(&chat.ID, &chat.Name, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}
	chat.CreatedAt = chat.CreatedAt.UTC()

	participants, err := db.participants(ctx, []string{chatID})
	if err != nil {
		return nil, err
	}
	chat.Participants = participants[chatID]
	return chat, nil
}

// ChatsForUser returns every chat userID participates in, oldest first.
func (db *DB) ChatsForUser(ctx context.Context, userID string) (chats []models.Chat, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("select", "chats", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.name, c.created_at
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE p.user_id = ?
		ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats for %s: %w", userID, err)
	}
	defer closeWithLog(rows, "rows")

	var ids []string
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		chats = append(chats, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}
	if len(ids) == 0 {
		return chats, nil
	}

	participants, err := db.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		chats[i].Participants = participants[chats[i].ID]
	}
	return chats, nil
}

// participants loads the member lists of several chats in one query
func (db *DB) participants(ctx context.Context, chatIDs []string) (map[string][]string, error) {
	marks, args := placeholders(chatIDs)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT chat_id, user_id FROM chat_participants
		WHERE chat_id IN (`+marks+`)
		ORDER BY chat_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result := make(map[string][]string, len(chatIDs))
	for rows.Next() {
		var chatID, userID string
		if err := rows.Scan(&chatID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		result[chatID] = append(result[chatID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return result, nil
}
