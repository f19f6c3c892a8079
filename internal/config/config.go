// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP listener
//     - Database: DuckDB file for restaurants, chats, messages, notifications
//     - State: key-value backend for connection and rate-limit state
//     - Preferences: key-value backend for user preference records
//     - Redis: shared store used when a redis backend is selected
//
//  2. Core:
//     - Recommend: scoring weights, candidate bounds, worker pool, circuit breaker
//     - Messaging: message limits, send rate, read batching, push fan-out
//
//  3. API & Security:
//     - Security: JWT verification, CORS, per-IP rate limiting, admin users
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
type Config struct {
	Server      ServerConfig     `koanf:"server"`
	Database    DatabaseConfig   `koanf:"database"`
	State       StoreConfig      `koanf:"state"`
	Preferences StoreConfig      `koanf:"preferences"`
	Redis       RedisConfig      `koanf:"redis"`
	Recommend   RecommendConfig  `koanf:"recommend"`
	Messaging   MessagingConfig  `koanf:"messaging"`
	Security    SecurityConfig   `koanf:"security"`
	Logging     LoggingConfig    `koanf:"logging"`
	Supervisor  SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// StoreConfig selects a key-value backend.
//
// Backend is one of "memory", "redis" or "badger". BadgerPath is required
// for the badger backend; TTLs and atomic updates behave the same on all three.
type StoreConfig struct {
	Backend    string `koanf:"backend"`
	BadgerPath string `koanf:"badger_path"`
}

// RedisConfig holds the shared redis connection used by redis-backed stores
type RedisConfig struct {
	URL         string        `koanf:"url"`
	PoolSize    int           `koanf:"pool_size"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// RecommendConfig holds recommendation engine settings
type RecommendConfig struct {
	DefaultLimit   int           `koanf:"default_limit"`
	MaxLimit       int           `koanf:"max_limit"`
	MaxCandidates  int           `koanf:"max_candidates"`
	MaxRadiusKm    float64       `koanf:"max_radius_km"`
	Workers        int           `koanf:"workers"` // 0 = runtime.NumCPU()
	Timeout        time.Duration `koanf:"timeout"`
	CatalogRefresh time.Duration `koanf:"catalog_refresh"`
	LogBufferSize  int           `koanf:"log_buffer_size"`
	Weights        WeightsConfig `koanf:"weights"`
	Breaker        BreakerConfig `koanf:"breaker"`
}

// WeightsConfig holds the per-signal weights of the composite score.
// The ten weights must sum to 1.0.
type WeightsConfig struct {
	GamePreference    float64 `koanf:"game_preference"`
	VisitHistory      float64 `koanf:"visit_history"`
	FollowingCurators float64 `koanf:"following_curators"`
	LikedPattern      float64 `koanf:"liked_pattern"`
	SocialInfluence   float64 `koanf:"social_influence"`
	TimeContext       float64 `koanf:"time_context"`
	CompanionContext  float64 `koanf:"companion_context"`
	SeasonalContext   float64 `koanf:"seasonal_context"`
	Trending          float64 `koanf:"trending"`
	Distance          float64 `koanf:"distance"`
}

// Sum returns the total of all ten weights.
func (w WeightsConfig) Sum() float64 {
	return w.GamePreference + w.VisitHistory + w.FollowingCurators + w.LikedPattern +
		w.SocialInfluence + w.TimeContext + w.CompanionContext + w.SeasonalContext +
		w.Trending + w.Distance
}

// BreakerConfig configures the circuit breaker guarding recommendation dependencies
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// MessagingConfig holds chat and notification delivery settings
type MessagingConfig struct {
	MaxMessageLength int             `koanf:"max_message_length"`
	RateLimit        RateLimitConfig `koanf:"rate_limit"`
	ReadBatchSize    int             `koanf:"read_batch_size"`
	Timezone         string          `koanf:"timezone"`
	PresenceTTL      time.Duration   `koanf:"presence_ttl"`
	SendBuffer       int             `koanf:"send_buffer"`
	InboundRate      float64         `koanf:"inbound_rate"` // websocket frames per second per socket
	InboundBurst     int             `koanf:"inbound_burst"`
	Fanout           FanoutConfig    `koanf:"fanout"`
}

// RateLimitConfig is a sliding-window send limit
type RateLimitConfig struct {
	Max    int           `koanf:"max"`
	Window time.Duration `koanf:"window"`
}

// FanoutConfig selects how pushes reach sockets held by other processes.
//
// Backend is "local" (single process, no relay), "gochannel" (in-process
// Watermill pub/sub) or "nats". With EmbeddedNATS the server starts its own
// NATS server on EmbeddedNATSPort and connects to it.
type FanoutConfig struct {
	Backend          string `koanf:"backend"`
	Topic            string `koanf:"topic"`
	NATSURL          string `koanf:"nats_url"`
	EmbeddedNATS     bool   `koanf:"embedded_nats"`
	EmbeddedNATSPort int    `koanf:"embedded_nats_port"`
	NodeID           string `koanf:"node_id"` // generated when empty
}

// SecurityConfig holds authentication and HTTP hardening settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// AdminUsers are user IDs granted the admin role for catalog management
	// and system notifications.
	AdminUsers []string `koanf:"admin_users"`

	// AuthzPolicyPath overrides the embedded Casbin policy when set.
	AuthzPolicyPath string `koanf:"authz_policy_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig holds suture restart policy settings
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// UsesRedis reports whether any store is configured with the redis backend.
func (c *Config) UsesRedis() bool {
	return c.State.Backend == "redis" || c.Preferences.Backend == "redis"
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
