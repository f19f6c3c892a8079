// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/models"
)

// UpsertRestaurant creates or replaces a catalog entry
//
// @Summary Upsert a restaurant (admin)
// @Description The restaurant is written to the database and becomes a candidate immediately.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.Restaurant true "Restaurant"
// @Success 200 {object} models.APIResponse{data=models.Restaurant}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/restaurants [post]
func (h *Handler) UpsertRestaurant(w http.ResponseWriter, r *http.Request) {
	var rest models.Restaurant
	if !decodeAndValidate(w, r, &rest) {
		return
	}
	if rest.Hours != nil {
		if _, ok := rest.Hours.IsOpenAt(time.Time{}); !ok {
			respondError(w, r, http.StatusBadRequest, codeValidation, "hours must be HH:MM clock times", map[string]interface{}{"field": "hours"}, nil)
			return
		}
	}

	if err := h.deps.Store.UpsertRestaurant(r.Context(), &rest); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.deps.Catalog.Upsert(rest)

	logging.Ctx(r.Context()).Info().
		Str("restaurant_id", rest.ID).
		Str("admin", currentUser(r)).
		Msg("Restaurant upserted")
	respondSuccess(w, r, http.StatusOK, rest)
}

// RefreshCatalog reloads the in-memory catalog from the database
//
// @Summary Refresh the catalog (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /api/v1/admin/catalog/refresh [post]
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.Refresh(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"restaurants": h.deps.Catalog.Len(),
		"loadedAt":    h.deps.Catalog.LoadedAt(),
	})
}

// UpsertEndorsement records a curator endorsement
//
// @Summary Upsert a curator endorsement (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EndorsementRequest true "Endorsement"
// @Success 200 {object} models.APIResponse{data=models.CuratorEndorsement}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/endorsements [post]
func (h *Handler) UpsertEndorsement(w http.ResponseWriter, r *http.Request) {
	var req EndorsementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	e := &models.CuratorEndorsement{
		CuratorID:    req.CuratorID,
		RestaurantID: req.RestaurantID,
		CuratorType:  req.CuratorType,
		TrustScore:   req.TrustScore,
	}
	if err := h.deps.Store.UpsertEndorsement(r.Context(), e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, e)
}
