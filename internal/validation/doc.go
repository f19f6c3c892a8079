// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with user-friendly error
// messages and conversion to the API error envelope.
//
// # Quick Start
//
//	type recordVisitRequest struct {
//	    RestaurantID string  `json:"restaurantId" validate:"required,max=64"`
//	    Rating       float64 `json:"rating" validate:"min=0,max=5"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Field Names
//
// Errors report the JSON name of a field ("restaurantId", not
// "RestaurantID") so clients can map them back to their request body.
//
// # Custom Tags
//
// enum accepts string enumerations implementing Valid() bool:
//
//	Category models.Category `json:"category" validate:"required,enum"`
//
// # Error Messages
//
//	required   -> "restaurantId is required"
//	enum       -> "category is not a recognized value"
//	max=4000   -> "content must be at most 4000 characters"
//	max=100    -> "messageIds must be at most 100 items" (slices)
//	oneof=a b  -> "relatedType must be one of: a b"
//	latitude   -> "lat must be a valid latitude (-90 to 90)"
package validation
