// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package recommend

import (
	"fmt"
	"time"

	"github.com/aprasetya/filmrec/internal/catalog"
)

// Config holds engine parameters.
type Config struct {
	// MaxResults is the maximum number of movies per recommendation.
	MaxResults int

	// CacheTTL is how long a (genre, year) result set stays cached.
	// Zero disables caching.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the response cache.
	CacheMaxEntries int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:      3,
		CacheTTL:        5 * time.Minute,
		CacheMaxEntries: 256,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %v", c.CacheTTL)
	}
	if c.CacheTTL > 0 && c.CacheMaxEntries < 1 {
		return fmt.Errorf("cache max entries must be positive, got %d", c.CacheMaxEntries)
	}
	return nil
}

// Recommendation is one recommended movie together with the genre the user
// selected, which the card template displays instead of the full indicator
// set.
type Recommendation struct {
	Movie catalog.Movie
	Genre string
}

// Card renders the recommendation as the Markdown message the bot sends.
func (r Recommendation) Card() string {
	return formatCard(r.Movie, r.Genre)
}
