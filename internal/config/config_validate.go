// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// minJWTSecretLength is the minimum accepted HS256 secret length.
const minJWTSecretLength = 32

var (
	validStoreBackends  = map[string]bool{"memory": true, "redis": true, "badger": true}
	validFanoutBackends = map[string]bool{"local": true, "gochannel": true, "nats": true}
	validLogLevels      = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats     = map[string]bool{"json": true, "console": true}
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStores(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateMessaging(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	return nil
}

// validateStores validates the key-value backends and their dependencies
func (c *Config) validateStores() error {
	stores := []struct {
		name string
		cfg  StoreConfig
	}{
		{"STATE", c.State},
		{"PREFERENCES", c.Preferences},
	}

	for _, s := range stores {
		if !validStoreBackends[s.cfg.Backend] {
			return fmt.Errorf("%s_BACKEND must be one of: memory, redis, badger", s.name)
		}
		if s.cfg.Backend == "badger" && s.cfg.BadgerPath == "" {
			return fmt.Errorf("%s_BADGER_PATH is required when %s_BACKEND=badger", s.name, s.name)
		}
	}

	if c.State.Backend == "badger" && c.Preferences.Backend == "badger" &&
		c.State.BadgerPath == c.Preferences.BadgerPath {
		return fmt.Errorf("STATE_BADGER_PATH and PREFERENCES_BADGER_PATH must differ")
	}

	if c.UsesRedis() {
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when a redis backend is selected")
		}
		if err := validateRedisURL(c.Redis.URL); err != nil {
			return fmt.Errorf("REDIS_URL: %w", err)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultLimit < 1 || r.MaxLimit < 1 {
		return fmt.Errorf("recommend limits must be positive")
	}
	if r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT (%d) exceeds RECOMMEND_MAX_LIMIT (%d)", r.DefaultLimit, r.MaxLimit)
	}
	if r.MaxCandidates < 1 {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATES must be positive")
	}
	if r.MaxRadiusKm <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_RADIUS_KM must be positive")
	}
	if r.Workers < 0 {
		return fmt.Errorf("RECOMMEND_WORKERS must not be negative")
	}
	if r.LogBufferSize < 1 {
		return fmt.Errorf("RECOMMEND_LOG_BUFFER_SIZE must be positive")
	}
	return validateWeights(r.Weights)
}

// validateWeights requires non-negative weights summing to 1.0.
func validateWeights(w WeightsConfig) error {
	for name, v := range map[string]float64{
		"game_preference":    w.GamePreference,
		"visit_history":      w.VisitHistory,
		"following_curators": w.FollowingCurators,
		"liked_pattern":      w.LikedPattern,
		"social_influence":   w.SocialInfluence,
		"time_context":       w.TimeContext,
		"companion_context":  w.CompanionContext,
		"seasonal_context":   w.SeasonalContext,
		"trending":           w.Trending,
		"distance":           w.Distance,
	} {
		if v < 0 {
			return fmt.Errorf("recommend.weights.%s must not be negative", name)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("recommend.weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

func (c *Config) validateMessaging() error {
	m := c.Messaging
	if m.MaxMessageLength < 1 {
		return fmt.Errorf("MESSAGE_MAX_LENGTH must be positive")
	}
	if m.RateLimit.Max < 1 || m.RateLimit.Window <= 0 {
		return fmt.Errorf("MESSAGE_RATE_MAX and MESSAGE_RATE_WINDOW must be positive")
	}
	if m.ReadBatchSize < 1 {
		return fmt.Errorf("MESSAGE_READ_BATCH must be positive")
	}
	if m.Timezone != "" {
		if _, err := time.LoadLocation(m.Timezone); err != nil {
			return fmt.Errorf("MESSAGE_TIMEZONE is invalid: %w", err)
		}
	}
	if m.SendBuffer < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive")
	}
	if !validFanoutBackends[m.Fanout.Backend] {
		return fmt.Errorf("FANOUT_BACKEND must be one of: local, gochannel, nats")
	}
	if m.Fanout.Backend == "nats" && m.Fanout.NATSURL == "" && !m.Fanout.EmbeddedNATS {
		return fmt.Errorf("NATS_URL is required when FANOUT_BACKEND=nats without NATS_EMBEDDED")
	}
	if m.Fanout.Backend == "nats" && m.Fanout.NATSURL != "" {
		if err := validateNATSURL(m.Fanout.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL: %w", err)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	secret := c.Security.JWTSecret
	if secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if strings.Contains(strings.ToUpper(secret), "REPLACE") {
		return fmt.Errorf("JWT_SECRET contains a placeholder value")
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
