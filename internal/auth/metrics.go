// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication outcomes
const (
	OutcomeSuccess = "success"
	OutcomeMissing = "missing"
	OutcomeInvalid = "invalid"
	OutcomeExpired = "expired"
)

var (
	// AuthAttempts counts token checks by outcome.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_auth_attempts_total",
			Help: "Total number of token authentication attempts",
		},
		[]string{"outcome"},
	)

	// AuthForbidden counts authenticated requests refused for a missing role.
	AuthForbidden = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablemap_auth_forbidden_total",
			Help: "Total number of requests refused for a missing role",
		},
		[]string{"role"},
	)
)

// RecordAuthAttempt records the outcome of one token check.
func RecordAuthAttempt(outcome string) {
	AuthAttempts.WithLabelValues(outcome).Inc()
}

// outcomeOf maps an Authenticate error to its metric outcome.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrNoCredentials):
		return OutcomeMissing
	case errors.Is(err, ErrExpiredCredentials):
		return OutcomeExpired
	default:
		return OutcomeInvalid
	}
}
