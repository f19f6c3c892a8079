// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package dispatch

import (
	"fmt"
	"time"

	"github.com/tomtom215/tablemap/internal/config"
)

// Config contains dispatcher limits.
type Config struct {
	// MaxMessageLength is counted in Unicode code points.
	MaxMessageLength int
	// ReadBatchSize bounds how many messages one mark-read call marks.
	ReadBatchSize int

	DefaultPageSize int
	MaxPageSize     int

	// Location renders the HH:MM timestamp of new_message events.
	Location *time.Location
	// UserCacheTTL bounds how stale a cached sender name may be.
	UserCacheTTL time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Config{
		MaxMessageLength: 500,
		ReadBatchSize:    100,
		DefaultPageSize:  50,
		MaxPageSize:      100,
		Location:         loc,
		UserCacheTTL:     time.Minute,
	}
}

// ConfigFrom builds a Config from application configuration.
func ConfigFrom(mc config.MessagingConfig) (*Config, error) {
	cfg := DefaultConfig()
	if mc.MaxMessageLength > 0 {
		cfg.MaxMessageLength = mc.MaxMessageLength
	}
	if mc.ReadBatchSize > 0 {
		cfg.ReadBatchSize = mc.ReadBatchSize
	}
	if mc.Timezone != "" {
		loc, err := time.LoadLocation(mc.Timezone)
		if err != nil {
			return nil, fmt.Errorf("messaging timezone %q: %w", mc.Timezone, err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

func (c *Config) pageSize(limit int) int {
	if limit <= 0 {
		return c.DefaultPageSize
	}
	return min(limit, c.MaxPageSize)
}
