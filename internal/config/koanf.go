// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tablemap/config.yaml",
	"/etc/tablemap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/tablemap.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		State: StoreConfig{
			Backend: "memory",
		},
		Preferences: StoreConfig{
			Backend:    "badger",
			BadgerPath: "/data/preferences",
		},
		Redis: RedisConfig{
			URL:         "",
			PoolSize:    20,
			DialTimeout: 5 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultLimit:   20,
			MaxLimit:       100,
			MaxCandidates:  100,
			MaxRadiusKm:    5,
			Workers:        0,
			Timeout:        10 * time.Second,
			CatalogRefresh: 5 * time.Minute,
			LogBufferSize:  1024,
			Weights: WeightsConfig{
				GamePreference:    0.20,
				VisitHistory:      0.15,
				FollowingCurators: 0.15,
				LikedPattern:      0.10,
				SocialInfluence:   0.10,
				TimeContext:       0.10,
				CompanionContext:  0.08,
				SeasonalContext:   0.05,
				Trending:          0.05,
				Distance:          0.02,
			},
			Breaker: BreakerConfig{
				MaxRequests:      3,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Messaging: MessagingConfig{
			MaxMessageLength: 500,
			RateLimit: RateLimitConfig{
				Max:    5,
				Window: time.Second,
			},
			ReadBatchSize: 100,
			Timezone:      "Asia/Seoul",
			PresenceTTL:   2 * time.Minute,
			SendBuffer:    256,
			InboundRate:   20,
			InboundBurst:  40,
			Fanout: FanoutConfig{
				Backend:          "local",
				Topic:            "tablemap.push",
				NATSURL:          "nats://127.0.0.1:4222",
				EmbeddedNATS:     false,
				EmbeddedNATSPort: 4222,
			},
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			JWTIssuer:         "",
			TokenTTL:          24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			AdminUsers:        []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. The result is validated before it is
// returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, STATE_BACKEND -> state.backend, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.admin_users",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Key-value stores
	"state_backend":           "state.backend",
	"state_badger_path":       "state.badger_path",
	"preferences_backend":     "preferences.backend",
	"preferences_badger_path": "preferences.badger_path",
	"redis_url":               "redis.url",
	"redis_pool_size":         "redis.pool_size",
	"redis_dial_timeout":      "redis.dial_timeout",

	// Recommendations
	"recommend_default_limit":     "recommend.default_limit",
	"recommend_max_limit":         "recommend.max_limit",
	"recommend_max_candidates":    "recommend.max_candidates",
	"recommend_max_radius_km":     "recommend.max_radius_km",
	"recommend_workers":           "recommend.workers",
	"recommend_timeout":           "recommend.timeout",
	"recommend_catalog_refresh":   "recommend.catalog_refresh",
	"recommend_log_buffer_size":   "recommend.log_buffer_size",
	"recommend_breaker_threshold": "recommend.breaker.failure_threshold",
	"recommend_breaker_timeout":   "recommend.breaker.timeout",

	// Messaging
	"message_max_length":  "messaging.max_message_length",
	"message_rate_max":    "messaging.rate_limit.max",
	"message_rate_window": "messaging.rate_limit.window",
	"message_read_batch":  "messaging.read_batch_size",
	"message_timezone":    "messaging.timezone",
	"presence_ttl":        "messaging.presence_ttl",
	"ws_send_buffer":      "messaging.send_buffer",
	"ws_inbound_rate":     "messaging.inbound_rate",
	"ws_inbound_burst":    "messaging.inbound_burst",
	"fanout_backend":      "messaging.fanout.backend",
	"fanout_topic":        "messaging.fanout.topic",
	"fanout_node_id":      "messaging.fanout.node_id",
	"nats_url":            "messaging.fanout.nats_url",
	"nats_embedded":       "messaging.fanout.embedded_nats",
	"nats_embedded_port":  "messaging.fanout.embedded_nats_port",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"token_ttl":           "security.token_ttl",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"admin_users":         "security.admin_users",
	"authz_policy_path":   "security.authz_policy_path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - STATE_BACKEND -> state.backend
//   - MESSAGE_RATE_MAX -> messaging.rate_limit.max
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
