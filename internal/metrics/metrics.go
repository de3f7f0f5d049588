// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package metrics provides Prometheus instrumentation for the bot:
// update routing, recommendation latency and outcomes, session store
// occupancy and Telegram send health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation metrics
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_updates_total",
			Help: "Total number of inbound updates routed, by session state and outcome",
		},
		[]string{"state", "outcome"}, // outcome: "handled", "reprompted", "error"
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmrec_active_sessions",
			Help: "Current number of tracked conversation sessions",
		},
	)

	SessionEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_session_evictions_total",
			Help: "Total number of sessions evicted from the store",
		},
		[]string{"reason"}, // "ttl", "capacity"
	)

	// Recommendation metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_recommendations_total",
			Help: "Total number of recommendation requests, by outcome",
		},
		[]string{"outcome"}, // "hit", "no_match", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmrec_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ClassifierDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmrec_classifier_duration_seconds",
			Help:    "Duration of classifier predictions in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmrec_recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmrec_recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Transport metrics
	TelegramSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_telegram_sends_total",
			Help: "Total number of Telegram send attempts, by result",
		},
		[]string{"result"}, // "ok", "error", "breaker_open"
	)

	TelegramBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmrec_telegram_breaker_state",
			Help: "Telegram send circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
