// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
)

// CreateChat creates a chat with the caller as the first participant
//
// @Summary Create a chat
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateChatRequest true "Chat"
// @Success 201 {object} models.APIResponse{data=models.Chat}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/chats [post]
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := currentUser(r)
	participants := []string{userID}
	seen := map[string]bool{userID: true}
	for _, p := range req.Participants {
		if !seen[p] {
			seen[p] = true
			participants = append(participants, p)
		}
	}
	if len(participants) < 2 {
		respondError(w, r, http.StatusBadRequest, codeValidation, "a chat needs at least one other participant", nil, nil)
		return
	}

	chat := &models.Chat{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Participants: participants,
		CreatedAt:    h.now().UTC(),
	}
	if err := h.deps.Store.CreateChat(r.Context(), chat); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, chat)
}

// ChatHistory returns a page of a chat's messages
//
// @Summary Get chat history
// @Description Messages are returned oldest to newest. Pass the createdAt of the
// @Description first returned message as before to page further back.
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param chatID path string true "Chat ID"
// @Param before query string false "Only messages created before this time (RFC3339)"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.Message}
// @Failure 403 {object} models.APIResponse "Not a participant"
// @Router /api/v1/chats/{chatID}/messages [get]
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidation, "before must be an RFC3339 timestamp", map[string]interface{}{"field": "before"}, nil)
			return
		}
		before = t
	}

	msgs, err := h.deps.Messenger.History(r.Context(), currentUser(r), chi.URLParam(r, "chatID"), before, getIntParam(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	respondList(w, r, msgs, len(msgs))
}

// SendMessage posts a message to a chat
//
// @Summary Send a message
// @Description The message is persisted and pushed to every connected participant.
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chatID path string true "Chat ID"
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} models.APIResponse{data=models.Message}
// @Failure 400 {object} models.APIResponse "Invalid or too long"
// @Failure 403 {object} models.APIResponse "Not a participant"
// @Failure 429 {object} models.APIResponse "Rate limited"
// @Router /api/v1/chats/{chatID}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageText
	}

	msg, err := h.deps.Messenger.SendMessage(r.Context(), dispatch.SendMessageRequest{
		SenderID:     currentUser(r),
		ChatID:       chi.URLParam(r, "chatID"),
		Content:      req.Content,
		Type:         msgType,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, msg)
}

// MarkChatRead marks every unread message in a chat read by the caller
//
// @Summary Mark chat messages read
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param chatID path string true "Chat ID"
// @Success 200 {object} models.APIResponse "IDs of the messages marked"
// @Failure 403 {object} models.APIResponse "Not a participant"
// @Router /api/v1/chats/{chatID}/read [post]
func (h *Handler) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	ids, err := h.deps.Messenger.MarkMessagesRead(r.Context(), currentUser(r), chi.URLParam(r, "chatID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"messageIds": ids,
		"count":      len(ids),
	})
}

// Presence reports whether a user has a live connection on any node
//
// @Summary Get user presence
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/presence/{userID} [get]
func (h *Handler) Presence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	online, err := h.deps.Messenger.IsOnline(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"userId": userID,
		"online": online,
	})
}
