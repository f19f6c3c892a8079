// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"STATE_BACKEND", "state.backend"},
		{"REDIS_URL", "redis.url"},
		{"MESSAGE_RATE_MAX", "messaging.rate_limit.max"},
		{"FANOUT_BACKEND", "messaging.fanout.backend"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MESSAGE_RATE_MAX", "10")
	t.Setenv("MESSAGE_RATE_WINDOW", "2s")
	t.Setenv("ADMIN_USERS", "alice, bob ,")
	t.Setenv("PREFERENCES_BACKEND", "memory")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Messaging.RateLimit.Max != 10 {
		t.Errorf("Messaging.RateLimit.Max = %d, want 10", cfg.Messaging.RateLimit.Max)
	}
	if cfg.Messaging.RateLimit.Window != 2*time.Second {
		t.Errorf("Messaging.RateLimit.Window = %v, want 2s", cfg.Messaging.RateLimit.Window)
	}
	if len(cfg.Security.AdminUsers) != 2 || cfg.Security.AdminUsers[0] != "alice" || cfg.Security.AdminUsers[1] != "bob" {
		t.Errorf("Security.AdminUsers = %v, want [alice bob]", cfg.Security.AdminUsers)
	}
	if cfg.Preferences.Backend != "memory" {
		t.Errorf("Preferences.Backend = %q, want memory", cfg.Preferences.Backend)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.Weights.GamePreference != 0.20 {
		t.Errorf("Recommend.Weights.GamePreference = %v, want 0.20 (default)", cfg.Recommend.Weights.GamePreference)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

security:
  jwt_secret: "file-secret-file-secret-file-secret-0001"

messaging:
  timezone: "UTC"
  fanout:
    backend: "gochannel"

logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	// Env still wins over the file
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 (env over file)", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Messaging.Fanout.Backend != "gochannel" {
		t.Errorf("Messaging.Fanout.Backend = %q, want gochannel", cfg.Messaging.Fanout.Backend)
	}
	if cfg.Messaging.Timezone != "UTC" {
		t.Errorf("Messaging.Timezone = %q, want UTC", cfg.Messaging.Timezone)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/data/tablemap.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidationFailure(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STATE_BACKEND", "redis")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for redis backend without REDIS_URL")
	}
}
