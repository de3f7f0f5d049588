// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package config loads Filmrec configuration with Koanf v2 using layered
// sources (highest priority wins):
//
//  1. Environment variables (TELEGRAM_TOKEN, CATALOG_PATH, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the bot process.
type Config struct {
	Telegram  TelegramConfig  `koanf:"telegram"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Model     ModelConfig     `koanf:"model"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	// Token authenticates to the Bot API. Required.
	Token string `koanf:"token" validate:"required"`

	// PollTimeout is the long-poll timeout passed to getUpdates, in seconds.
	PollTimeout int `koanf:"poll_timeout" validate:"gte=1,lte=60"`

	// SendRate caps outbound messages per second. The Bot API allows
	// roughly 30 messages per second across all chats.
	SendRate float64 `koanf:"send_rate" validate:"gt=0"`

	// SendBurst is the rate limiter burst size.
	SendBurst int `koanf:"send_burst" validate:"gte=1"`

	// Breaker configures the send-path circuit breaker.
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker guarding Bot API sends.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive send failures that
	// trips the breaker.
	FailureThreshold uint32 `koanf:"failure_threshold" validate:"gte=1"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`
}

// CatalogConfig configures the pre-processed movie table.
type CatalogConfig struct {
	// Path points at the catalog file. CSV, Parquet and native DuckDB
	// files are accepted. Required.
	Path string `koanf:"path" validate:"required"`
}

// ModelConfig configures the pre-trained classifier.
type ModelConfig struct {
	// Path points at the exported decision-tree model (JSON). Required.
	Path string `koanf:"path" validate:"required"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	// MaxResults is the maximum number of movies returned per request.
	MaxResults int `koanf:"max_results" validate:"gte=1,lte=10"`

	// CacheTTL is how long a (genre, year) result set stays cached.
	// Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	// CacheMaxEntries bounds the response cache.
	CacheMaxEntries int `koanf:"cache_max_entries" validate:"gte=1"`
}

// SessionConfig configures the conversation session store.
type SessionConfig struct {
	// TTL is how long an idle session survives before eviction.
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`

	// MaxEntries bounds the session store; the least recently used
	// session is evicted when the bound is reached.
	MaxEntries int `koanf:"max_entries" validate:"gte=1"`
}

// ServerConfig configures the ops HTTP server (health, metrics).
type ServerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port" validate:"gte=1,lte=65535"`

	// Timeout applies to reads, writes and shutdown.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimitReqs / RateLimitWindow configure per-IP request limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: field %s failed rule %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
