// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/models"
	"github.com/tomtom215/tablemap/internal/recommend"
)

// parseRecommendationsRequest reads the query string. A malformed number is
// reported as a validation error rather than silently dropped.
func parseRecommendationsRequest(r *http.Request) (*RecommendationsRequest, *models.APIError) {
	q := r.URL.Query()
	req := &RecommendationsRequest{
		Companion: models.Companion(q.Get("companion")),
		Time:      q.Get("time"),
		Limit:     getIntParam(r, "limit", 0),
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"lat", &req.Lat}, {"lng", &req.Lng}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &models.APIError{
				Code:    codeValidation,
				Message: p.name + " must be a number",
				Details: map[string]interface{}{"field": p.name},
			}
		}
		*p.dst = &v
	}

	if (req.Lat == nil) != (req.Lng == nil) {
		return nil, &models.APIError{
			Code:    codeValidation,
			Message: "lat and lng must be given together",
		}
	}

	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

// recommendContext converts the validated request into the engine's
// situational context. Without a time, CurrentTime stays zero and the engine
// uses its own clock in the configured zone.
func (req *RecommendationsRequest) recommendContext() recommend.Context {
	rc := recommend.Context{Companion: req.Companion}
	if req.Lat != nil && req.Lng != nil {
		rc.Location = &recommend.Location{Lat: *req.Lat, Lng: *req.Lng}
	}
	if req.Time != "" {
		// Already checked by the datetime validator.
		if t, err := time.Parse(time.RFC3339, req.Time); err == nil {
			rc.CurrentTime = t
		}
	}
	return rc
}

// Recommendations returns the caller's ranked recommendations
//
// @Summary Get personalized restaurant recommendations
// @Description Scores the candidate set for the caller using ten preference signals.
// @Description New users receive a rating-ordered fallback list with fallback=true.
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param lat query number false "Latitude, required with lng"
// @Param lng query number false "Longitude, required with lat"
// @Param companion query string false "Dining companion" Enums(alone, couple, friends, family, business)
// @Param time query string false "Local time of the visit (RFC3339); defaults to now in the configured timezone"
// @Param limit query int false "Maximum results (default 20, capped at 100)"
// @Success 200 {object} models.APIResponse{data=recommend.Result}
// @Failure 400 {object} models.APIResponse "Invalid context"
// @Failure 503 {object} models.APIResponse "Recommendation service unavailable"
// @Router /api/v1/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, apiErr := parseRecommendationsRequest(r)
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	userID := currentUser(r)
	result, err := h.deps.Recommender.GetRecommendations(r.Context(), userID, req.recommendContext(), req.Limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("user_id", userID).
		Int("returned", len(result.Recommendations)).
		Int("candidates", result.TotalCandidates).
		Bool("fallback", result.Fallback).
		Msg("Recommendations served")

	respondSuccess(w, r, http.StatusOK, result)
}
