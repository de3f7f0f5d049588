// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package server exposes the ops HTTP surface: liveness, readiness and
// Prometheus metrics. The bot itself speaks only to the Telegram Bot API;
// this server is for operators and the scraper.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aprasetya/filmrec/internal/config"
)

// Check reports whether one dependency is ready. Return nil when healthy.
type Check func() error

// NewRouter builds the ops router.
//
// checks is a named set of readiness probes; /readyz returns 503 when any
// fails. The catalog and model load before the server starts, so in
// practice readiness flips unhealthy only when a check is wired to a
// runtime dependency.
func NewRouter(cfg config.ServerConfig, logger zerolog.Logger, checks map[string]Check) *chi.Mux {
	log := logger.With().Str("component", "server").Logger()

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for name, check := range checks {
			if err := check(); err != nil {
				log.Warn().Err(err).Str("check", name).Msg("readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(name + ": " + err.Error() + "\n"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
