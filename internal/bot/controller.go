// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package bot implements the conversation controller: a per-chat state
// machine that walks the user from genre choice through year choice to a
// recommendation, then offers another round.
//
// Session state is authoritative and routing is by (state, text). The
// original product routed purely by text patterns, which left genre names,
// year strings and the continue literals free to collide across states; a
// message that does not match the active state's expectation re-prompts for
// that state instead of being dropped.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aprasetya/filmrec/internal/metrics"
	"github.com/aprasetya/filmrec/internal/recommend"
	"github.com/aprasetya/filmrec/internal/session"
)

// Transport delivers outbound messages to the chat platform.
type Transport interface {
	// SendText sends a plain text message.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendMarkdown sends a Markdown-formatted message.
	SendMarkdown(ctx context.Context, chatID int64, text string) error

	// SendKeyboard sends a text message with a one-time reply keyboard,
	// one button per option, in order.
	SendKeyboard(ctx context.Context, chatID int64, text string, options []string) error
}

// Recommender produces ranked recommendations for a genre and year.
type Recommender interface {
	Recommend(ctx context.Context, genre string, year int) ([]recommend.Recommendation, error)
}

// Catalog is the subset of the record store the controller needs to build
// keyboards and validate genre input.
type Catalog interface {
	Genres() []string
	HasGenre(name string) bool
	YearsForGenre(genre string) []int
}

// Controller routes inbound messages through the conversation state machine.
// Safe for concurrent use across chats; messages for the same chat are
// expected to arrive sequentially (Telegram long polling delivers them in
// order).
type Controller struct {
	sessions  *session.Store
	catalog   Catalog
	engine    Recommender
	transport Transport
	logger    zerolog.Logger
}

// NewController creates a conversation controller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewController(sessions *session.Store, catalog Catalog, engine Recommender, transport Transport, logger zerolog.Logger) (*Controller, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store not set")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog not set")
	}
	if engine == nil {
		return nil, fmt.Errorf("recommender not set")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport not set")
	}

	return &Controller{
		sessions:  sessions,
		catalog:   catalog,
		engine:    engine,
		transport: transport,
		logger:    logger.With().Str("component", "bot").Logger(),
	}, nil
}

// HandleMessage routes one inbound text message for a chat.
func (c *Controller) HandleMessage(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	logger := c.logger.With().
		Str("update_id", uuid.NewString()).
		Int64("chat_id", chatID).
		Logger()

	// /start resets the conversation from any state.
	if isStartCommand(text) {
		metrics.UpdatesTotal.WithLabelValues("start", "handled").Inc()
		return c.beginCycle(ctx, chatID)
	}

	// A chat without a session is implicitly awaiting a genre.
	sess, _ := c.sessions.Get(chatID)

	var err error
	switch sess.State {
	case session.StateAwaitingGenre:
		err = c.handleGenre(ctx, chatID, text, logger)
	case session.StateAwaitingYear:
		err = c.handleYear(ctx, chatID, sess.Genre, text, logger)
	case session.StateAwaitingContinue:
		err = c.handleContinue(ctx, chatID, text)
	default:
		err = fmt.Errorf("session in unknown state %d", sess.State)
	}

	if err != nil {
		metrics.UpdatesTotal.WithLabelValues(sess.State.String(), "error").Inc()
		logger.Error().Err(err).Str("state", sess.State.String()).Msg("update handling failed")
		return err
	}
	return nil
}

// beginCycle starts a fresh genre-year round.
func (c *Controller) beginCycle(ctx context.Context, chatID int64) error {
	c.sessions.Put(chatID, session.Session{State: session.StateAwaitingGenre})
	return c.transport.SendKeyboard(ctx, chatID, msgChooseGenre, c.catalog.Genres())
}

// handleGenre processes input while awaiting a genre choice.
func (c *Controller) handleGenre(ctx context.Context, chatID int64, text string, logger zerolog.Logger) error {
	if !c.catalog.HasGenre(text) {
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingGenre.String(), "reprompted").Inc()
		return c.transport.SendKeyboard(ctx, chatID, msgChooseGenre, c.catalog.Genres())
	}

	years := c.catalog.YearsForGenre(text)
	if len(years) == 0 {
		// Every indicator for this genre is unset; nothing to offer.
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingGenre.String(), "handled").Inc()
		if err := c.transport.SendText(ctx, chatID, msgNoMatch); err != nil {
			return err
		}
		return c.beginCycle(ctx, chatID)
	}

	c.sessions.Put(chatID, session.Session{State: session.StateAwaitingYear, Genre: text})
	metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingGenre.String(), "handled").Inc()
	logger.Debug().Str("genre", text).Int("years", len(years)).Msg("genre selected")

	options := make([]string, len(years))
	for i, y := range years {
		options[i] = strconv.Itoa(y)
	}
	return c.transport.SendKeyboard(ctx, chatID, msgChooseYear(text), options)
}

// handleYear processes input while awaiting a release year.
func (c *Controller) handleYear(ctx context.Context, chatID int64, genre, text string, logger zerolog.Logger) error {
	year, ok := parseYear(text)
	if !ok {
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingYear.String(), "reprompted").Inc()
		return c.transport.SendText(ctx, chatID, msgInvalidYear)
	}

	recs, err := c.engine.Recommend(ctx, genre, year)
	if err != nil {
		// Engine failure is invisible to the user: log, keep the session
		// where it is and let them retry.
		return fmt.Errorf("recommend %s/%d: %w", genre, year, err)
	}

	metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingYear.String(), "handled").Inc()

	if len(recs) == 0 {
		logger.Debug().Str("genre", genre).Int("year", year).Msg("no matching movies")
		if err := c.transport.SendText(ctx, chatID, msgNoMatch); err != nil {
			return err
		}
		// Re-offer genre selection instead of stalling the flow.
		return c.beginCycle(ctx, chatID)
	}

	for _, rec := range recs {
		if err := c.transport.SendMarkdown(ctx, chatID, rec.Card()); err != nil {
			return err
		}
	}

	c.sessions.Put(chatID, session.Session{State: session.StateAwaitingContinue})
	return c.transport.SendKeyboard(ctx, chatID, msgAskContinue, []string{OptContinue, OptFinish})
}

// handleContinue processes the continue/finish choice.
func (c *Controller) handleContinue(ctx context.Context, chatID int64, text string) error {
	switch text {
	case OptContinue:
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingContinue.String(), "handled").Inc()
		return c.beginCycle(ctx, chatID)
	case OptFinish:
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingContinue.String(), "handled").Inc()
		c.sessions.Delete(chatID)
		return c.transport.SendText(ctx, chatID, msgFarewell)
	default:
		metrics.UpdatesTotal.WithLabelValues(session.StateAwaitingContinue.String(), "reprompted").Inc()
		return c.transport.SendKeyboard(ctx, chatID, msgAskContinue, []string{OptContinue, OptFinish})
	}
}

// isStartCommand matches /start, including the /start@BotName group form.
func isStartCommand(text string) bool {
	if !strings.HasPrefix(text, "/start") {
		return false
	}
	rest := text[len("/start"):]
	return rest == "" || strings.HasPrefix(rest, "@")
}

// parseYear accepts exactly four digits, the pattern the original product
// routed on. "20" and "19999" are rejected, as is anything non-numeric.
func parseYear(text string) (int, bool) {
	if len(text) != 4 {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return year, true
}
