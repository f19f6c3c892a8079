// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/preference"
)

// recordEngagement feeds the trending counters. A failure only costs a
// trending point, so it is logged and the request still succeeds.
func (h *Handler) recordEngagement(r *http.Request, restaurantID string, kind models.EngagementKind, at time.Time) {
	if h.deps.Store == nil {
		return
	}
	if err := h.deps.Store.RecordEngagement(r.Context(), restaurantID, kind, at); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("restaurant_id", restaurantID).
			Str("kind", string(kind)).
			Msg("Failed to record engagement")
	}
}

// GetPreferences returns the caller's preference record
//
// @Summary Get my preferences
// @Description Users without a record receive an empty one.
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.UserPreference}
// @Router /api/v1/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	pref, err := h.deps.Preferences.Get(r.Context(), userID)
	if errors.Is(err, preference.ErrNotFound) {
		respondSuccess(w, r, http.StatusOK, &models.UserPreference{UserID: userID})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, pref)
}

// SetGameWeights replaces the explicit weights
//
// @Summary Set game weights
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GameWeightsRequest true "Weights"
// @Success 200 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/game [put]
func (h *Handler) SetGameWeights(w http.ResponseWriter, r *http.Request) {
	var req GameWeightsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := h.deps.Preferences.SetGameWeights(r.Context(), currentUser(r), req.weights())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, pref)
}

// SetContextPreferences replaces meal time, companion and season preferences
//
// @Summary Set situational preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ContextPreferencesRequest true "Preferences; omitted maps are unchanged"
// @Success 200 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/context [put]
func (h *Handler) SetContextPreferences(w http.ResponseWriter, r *http.Request) {
	var req ContextPreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := h.deps.Preferences.SetContextPreferences(r.Context(), currentUser(r), req.preferences())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, pref)
}

// RecordVisit records a restaurant visit
//
// @Summary Record a visit
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VisitRequest true "Visit"
// @Success 201 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/visits [post]
func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	visitedAt := req.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = h.now().UTC()
	}

	pref, err := h.deps.Preferences.RecordVisit(r.Context(), currentUser(r), models.Visit{
		RestaurantID: req.RestaurantID,
		Rating:       req.Rating,
		VisitedAt:    visitedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordEngagement(r, req.RestaurantID, models.EngagementVisit, visitedAt)
	respondSuccess(w, r, http.StatusCreated, pref)
}

// Like records a like
//
// @Summary Like a restaurant
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LikeRequest true "Like"
// @Success 201 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/likes [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := h.deps.Preferences.Like(r.Context(), currentUser(r), req.RestaurantID, req.Strength)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordEngagement(r, req.RestaurantID, models.EngagementLike, h.now().UTC())
	respondSuccess(w, r, http.StatusCreated, pref)
}

// Follow follows a curator
//
// @Summary Follow a curator
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FollowRequest true "Follow"
// @Success 201 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/follows [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := h.deps.Preferences.Follow(r.Context(), currentUser(r), models.Follow{
		CuratorID:   req.CuratorID,
		TrustScore:  req.TrustScore,
		CuratorType: req.CuratorType,
		FollowedAt:  h.now().UTC(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, pref)
}

// RecordGroupVisit records a visit made with a group
//
// @Summary Record a group visit
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GroupVisitRequest true "Group visit"
// @Success 201 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/group-visits [post]
func (h *Handler) RecordGroupVisit(w http.ResponseWriter, r *http.Request) {
	var req GroupVisitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	visitedAt := req.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = h.now().UTC()
	}
	pref, err := h.deps.Preferences.RecordGroupVisit(r.Context(), currentUser(r), models.GroupVisit{
		RestaurantID: req.RestaurantID,
		Satisfaction: req.Satisfaction,
		VisitedAt:    visitedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, pref)
}

// Block hides a restaurant from the caller's recommendations
//
// @Summary Block a restaurant
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BlockRequest true "Restaurant to block"
// @Success 201 {object} models.APIResponse{data=models.UserPreference}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/preferences/blocks [post]
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := h.deps.Preferences.Block(r.Context(), currentUser(r), req.RestaurantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, pref)
}

// Unblock removes a block
//
// @Summary Unblock a restaurant
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param restaurantID path string true "Restaurant ID"
// @Success 200 {object} models.APIResponse{data=models.UserPreference}
// @Router /api/v1/preferences/blocks/{restaurantID} [delete]
func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	pref, err := h.deps.Preferences.Unblock(r.Context(), currentUser(r), restaurantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, pref)
}

// UpdateProfile creates or updates the caller's display profile
//
// @Summary Update my profile
// @Description The username and image are used as sender summaries on messages and notifications.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Profile"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/users/me [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	userID := currentUser(r)
	user := &models.User{
		ID:           userID,
		Username:     strings.TrimSpace(req.Username),
		ProfileImage: req.ProfileImage,
		CreatedAt:    h.now().UTC(),
	}
	if err := h.deps.Store.UpsertUser(r.Context(), user); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.deps.Messenger.InvalidateUser(userID)
	respondSuccess(w, r, http.StatusOK, user)
}
