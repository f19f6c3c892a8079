// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tablemap/internal/dispatch"
	"github.com/tomtom215/tablemap/internal/models"
)

// ListNotifications returns the caller's notifications, newest first
//
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.Notification}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Messenger.ListNotifications(r.Context(), currentUser(r), getBoolParam(r, "unread"), getIntParam(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	respondList(w, r, list, len(list))
}

// UnreadNotificationCount returns the caller's unread count
//
// @Summary Count unread notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.Messenger.UnreadNotificationCount(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]int{"unread": n})
}

// CreateNotification sends a notification as the system
//
// @Summary Send a notification (admin)
// @Description The notification is stored and pushed when the recipient is online.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateNotificationRequest true "Notification"
// @Success 201 {object} models.APIResponse{data=models.Notification}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/notifications [post]
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	n, pushed, err := h.deps.Messenger.CreateNotification(r.Context(), dispatch.CreateNotificationRequest{
		RecipientID: req.RecipientID,
		SenderID:    currentUser(r),
		Type:        req.Type,
		Message:     req.Message,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("X-Notification-Pushed", boolHeader(pushed))
	respondSuccess(w, r, http.StatusCreated, n)
}

// MarkNotificationRead marks one notification read
//
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse "Not the recipient"
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.deps.Messenger.MarkNotificationRead(r.Context(), currentUser(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"id": id, "read": true})
}

// MarkAllNotificationsRead marks every unread notification read
//
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.Messenger.MarkAllNotificationsRead(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]int{"updated": n})
}

func boolHeader(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
