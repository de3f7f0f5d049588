// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

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

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/filmrec/config.yaml",
	"/etc/filmrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. The defaults are
// loaded first and then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:       "",
			PollTimeout: 30,
			SendRate:    25, // Bot API global bound is ~30 msg/s
			SendBurst:   5,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				Timeout:          30 * time.Second,
				MaxRequests:      1,
			},
		},
		Catalog: CatalogConfig{
			Path: "/data/catalog.csv",
		},
		Model: ModelConfig{
			Path: "/data/model.json",
		},
		Recommend: RecommendConfig{
			MaxResults:      3,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 256,
		},
		Session: SessionConfig{
			TTL:        30 * time.Minute,
			MaxEntries: 10000,
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            8090,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
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

// envAliases maps well-known environment variable names onto config paths.
// TELEGRAM_BOT_TOKEN is the variable name the original deployment used.
var envAliases = map[string]string{
	"TELEGRAM_BOT_TOKEN": "telegram.token",
	"TELEGRAM_TOKEN":     "telegram.token",
	"CATALOG_PATH":       "catalog.path",
	"MODEL_PATH":         "model.path",
	"LOG_LEVEL":          "logging.level",
	"LOG_FORMAT":         "logging.format",
	"LOG_CALLER":         "logging.caller",
	"HTTP_HOST":          "server.host",
	"HTTP_PORT":          "server.port",
	"HTTP_ENABLED":       "server.enabled",
}

// envSectionPrefixes are config sections whose env variables follow the
// SECTION_FIELD_NAME convention, e.g. SESSION_MAX_ENTRIES -> session.max_entries.
var envSectionPrefixes = []string{
	"TELEGRAM_BREAKER_",
	"TELEGRAM_",
	"CATALOG_",
	"MODEL_",
	"RECOMMEND_",
	"SESSION_",
	"SERVER_",
	"LOGGING_",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unrecognized variables are dropped so unrelated process environment does
// not leak into the configuration.
func envTransformFunc(key string) string {
	if path, ok := envAliases[key]; ok {
		return path
	}

	for _, prefix := range envSectionPrefixes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		section := strings.ToLower(strings.TrimSuffix(prefix, "_"))
		section = strings.ReplaceAll(section, "_", ".")
		field := strings.ToLower(strings.TrimPrefix(key, prefix))
		if field == "" {
			return ""
		}
		return section + "." + field
	}

	return ""
}
