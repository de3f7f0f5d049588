// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package main is the entry point for the Filmrec bot process.
//
// Filmrec is a Telegram bot that recommends movies by genre and release
// year. It walks each chat through a short conversation (genre, then year),
// filters a pre-processed catalog, confirms the candidates with a
// pre-trained decision-tree classifier and replies with the most-watched
// matches as formatted cards.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layering env vars over an optional YAML file
//     over built-in defaults
//  2. Logging: zerolog, JSON or console format
//  3. Classifier: decision-tree model exported to JSON
//  4. Catalog: CSV/Parquet/DuckDB table loaded through DuckDB, validated
//     against the model's feature columns
//  5. Engine, session store, conversation controller
//  6. Telegram transport: authenticated Bot API client wrapped with a rate
//     limiter and a circuit breaker
//  7. Supervision tree: update poller (bot layer) and ops HTTP server
//     (ops layer) under suture
//
// # Configuration
//
// Required settings:
//   - TELEGRAM_BOT_TOKEN (or TELEGRAM_TOKEN): Bot API token
//   - CATALOG_PATH: pre-processed movie table
//   - MODEL_PATH: exported decision-tree model
//
// See config.example.yaml for the full surface.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the poller stops consuming
// updates and the ops server drains in-flight requests within the
// configured timeout.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aprasetya/filmrec/internal/bot"
	"github.com/aprasetya/filmrec/internal/catalog"
	"github.com/aprasetya/filmrec/internal/classifier"
	"github.com/aprasetya/filmrec/internal/config"
	"github.com/aprasetya/filmrec/internal/logging"
	"github.com/aprasetya/filmrec/internal/recommend"
	"github.com/aprasetya/filmrec/internal/server"
	"github.com/aprasetya/filmrec/internal/session"
	"github.com/aprasetya/filmrec/internal/supervisor"
	"github.com/aprasetya/filmrec/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors surface through the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("catalog", cfg.Catalog.Path).
		Str("model", cfg.Model.Path).
		Msg("Starting Filmrec")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The classifier loads first: it dictates which feature columns the
	// catalog must carry.
	model, err := classifier.Load(cfg.Model.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load classifier model")
	}
	logging.Info().
		Int("features", len(model.FeatureColumns())).
		Msg("Classifier model loaded")

	store, err := catalog.Load(ctx, cfg.Catalog.Path, model.FeatureColumns())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	logging.Info().
		Int("movies", store.Len()).
		Int("genres", len(store.Genres())).
		Msg("Catalog loaded")

	engine, err := recommend.NewEngine(recommend.Config{
		MaxResults:      cfg.Recommend.MaxResults,
		CacheTTL:        cfg.Recommend.CacheTTL,
		CacheMaxEntries: cfg.Recommend.CacheMaxEntries,
	}, store, model, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	sessions := session.NewStore(cfg.Session.MaxEntries, cfg.Session.TTL)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to authenticate with Telegram")
	}
	logging.Info().Str("username", api.Self.UserName).Msg("Connected to Telegram")

	sender, err := telegram.NewSender(api, cfg.Telegram, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Telegram sender")
	}

	controller, err := bot.NewController(sessions, store, engine, sender, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create conversation controller")
	}

	poller, err := telegram.NewPoller(api, controller, cfg.Telegram.PollTimeout, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create update poller")
	}

	// Supervision tree: sutureslog needs an slog.Logger, bridged from
	// zerolog by the logging package.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.Timeout,
	})
	tree.AddBotService(poller)

	if cfg.Server.Enabled {
		router := server.NewRouter(cfg.Server, logging.Logger(), nil)
		tree.AddOpsService(server.NewService(cfg.Server, router))
		logging.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Ops server enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Filmrec stopped")
}
