// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Recommend.MaxResults != 3 {
		t.Errorf("MaxResults = %d, want 3", cfg.Recommend.MaxResults)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want 30m", cfg.Session.TTL)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadMissingTokenFails(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without a Telegram token")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:xyz")
	t.Setenv("RECOMMEND_MAX_RESULTS", "5")
	t.Setenv("SESSION_MAX_ENTRIES", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Telegram.Token != "999:xyz" {
		t.Errorf("Token = %q, want 999:xyz", cfg.Telegram.Token)
	}
	if cfg.Recommend.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.Recommend.MaxResults)
	}
	if cfg.Session.MaxEntries != 50 {
		t.Errorf("Session.MaxEntries = %d, want 50", cfg.Session.MaxEntries)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("telegram:\n  token: file-token\nrecommend:\n  max_results: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Telegram.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Telegram.Token)
	}
	if cfg.Recommend.MaxResults != 2 {
		t.Errorf("MaxResults = %d, want 2", cfg.Recommend.MaxResults)
	}
}

func TestEnvTakesPriorityOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("telegram:\n  token: file-token\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TELEGRAM_TOKEN", "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Telegram.Token)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"TELEGRAM_BOT_TOKEN", "telegram.token"},
		{"TELEGRAM_TOKEN", "telegram.token"},
		{"TELEGRAM_POLL_TIMEOUT", "telegram.poll_timeout"},
		{"TELEGRAM_BREAKER_FAILURE_THRESHOLD", "telegram.breaker.failure_threshold"},
		{"CATALOG_PATH", "catalog.path"},
		{"RECOMMEND_CACHE_TTL", "recommend.cache_ttl"},
		{"SESSION_MAX_ENTRIES", "session.max_entries"},
		{"SERVER_RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
		{"UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max results", func(c *Config) { c.Recommend.MaxResults = 0 }},
		{"negative session ttl", func(c *Config) { c.Session.TTL = -time.Minute }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero send rate", func(c *Config) { c.Telegram.SendRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Telegram.Token = "123:abc"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted invalid config")
			}
		})
	}
}
