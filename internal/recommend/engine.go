// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package recommend implements the recommendation engine: filter the catalog
// by genre and release year, consult the classifier, rank by viewer count
// and truncate to the configured result size.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aprasetya/filmrec/internal/catalog"
	"github.com/aprasetya/filmrec/internal/metrics"
)

// CatalogProvider supplies candidate rows. Implemented by *catalog.Store;
// the interface keeps the engine testable without a loaded catalog.
type CatalogProvider interface {
	FilterGenreYear(genre string, year int) []catalog.Movie
	HasGenre(name string) bool
}

// Classifier is the black-box predictor consulted to narrow candidates.
// It returns one predicted title label per input row, in input order.
type Classifier interface {
	Predict(matrix [][]float64) ([]string, error)
}

// Engine produces recommendations. Safe for concurrent use.
type Engine struct {
	config     Config
	logger     zerolog.Logger
	catalog    CatalogProvider
	classifier Classifier

	// Response cache. The catalog is immutable for the process lifetime,
	// so entries only expire by TTL.
	cache   map[string]cacheEntry
	cacheMu sync.Mutex
}

// cacheEntry holds a cached result set.
type cacheEntry struct {
	recs      []Recommendation
	expiresAt time.Time
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, catalog CatalogProvider, classifier Classifier, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog provider not set")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier not set")
	}

	return &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		catalog:    catalog,
		classifier: classifier,
		cache:      make(map[string]cacheEntry),
	}, nil
}

// Recommend returns up to MaxResults movies matching genre and year, ranked
// by viewer count descending. An empty result with a nil error means no
// catalog row satisfied the filter or the classifier.
func (e *Engine) Recommend(ctx context.Context, genre string, year int) ([]Recommendation, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !e.catalog.HasGenre(genre) {
		return nil, fmt.Errorf("unknown genre %q", genre)
	}

	key := cacheKey(genre, year)
	if recs, ok := e.checkCache(key); ok {
		metrics.RecommendCacheHits.Inc()
		e.observeOutcome(recs)
		return recs, nil
	}
	metrics.RecommendCacheMisses.Inc()

	recs, err := e.compute(genre, year)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	e.storeCache(key, recs)
	e.observeOutcome(recs)

	e.logger.Debug().
		Str("genre", genre).
		Int("year", year).
		Int("returned", len(recs)).
		Msg("recommendation complete")

	return recs, nil
}

// compute runs the filter, predict, rank, truncate pipeline.
func (e *Engine) compute(genre string, year int) ([]Recommendation, error) {
	rows := e.catalog.FilterGenreYear(genre, year)
	if len(rows) == 0 {
		return nil, nil
	}

	matrix := make([][]float64, len(rows))
	for i := range rows {
		matrix[i] = rows[i].Features
	}

	predictions, err := e.classifier.Predict(matrix)
	if err != nil {
		return nil, fmt.Errorf("classifier predict: %w", err)
	}
	if len(predictions) != len(rows) {
		return nil, fmt.Errorf("classifier returned %d predictions for %d rows",
			len(predictions), len(rows))
	}

	// A row is kept only when its own prediction names it. Matching by set
	// membership instead would let a label inferred from one row admit a
	// different row that happens to carry the same title.
	kept := make([]catalog.Movie, 0, len(rows))
	for i := range rows {
		if predictions[i] == rows[i].Title {
			kept = append(kept, rows[i])
		}
	}

	// Rank by viewers descending; ties keep table order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Viewers > kept[j].Viewers
	})

	if len(kept) > e.config.MaxResults {
		kept = kept[:e.config.MaxResults]
	}

	recs := make([]Recommendation, len(kept))
	for i := range kept {
		recs[i] = Recommendation{Movie: kept[i], Genre: genre}
	}
	return recs, nil
}

// observeOutcome records the hit/no_match counter for a result set.
func (e *Engine) observeOutcome(recs []Recommendation) {
	if len(recs) == 0 {
		metrics.RecommendationsTotal.WithLabelValues("no_match").Inc()
		return
	}
	metrics.RecommendationsTotal.WithLabelValues("hit").Inc()
}

// cacheKey builds the cache key for a request.
func cacheKey(genre string, year int) string {
	return fmt.Sprintf("%s:%d", genre, year)
}

// checkCache returns a cached result set if present and fresh.
func (e *Engine) checkCache(key string) ([]Recommendation, bool) {
	if e.config.CacheTTL == 0 {
		return nil, false
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	entry, ok := e.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	out := make([]Recommendation, len(entry.recs))
	copy(out, entry.recs)
	return out, true
}

// storeCache stores a result set, evicting expired entries when full.
func (e *Engine) storeCache(key string, recs []Recommendation) {
	if e.config.CacheTTL == 0 {
		return
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= e.config.CacheMaxEntries {
		now := time.Now()
		for k, entry := range e.cache {
			if now.After(entry.expiresAt) {
				delete(e.cache, k)
			}
		}
		// Still full after expiry sweep: drop the new entry rather than
		// grow without bound.
		if len(e.cache) >= e.config.CacheMaxEntries {
			return
		}
	}

	e.cache[key] = cacheEntry{
		recs:      recs,
		expiresAt: time.Now().Add(e.config.CacheTTL),
	}
}
