// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// updateSource is the slice of the Bot API client the poller needs.
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler consumes one inbound text message.
type Handler interface {
	HandleMessage(ctx context.Context, chatID int64, text string) error
}

// Poller long-polls getUpdates and feeds text messages to the handler. It
// implements suture.Service; Serve returns when the context is canceled and
// the supervisor restarts it if the update channel closes unexpectedly.
//
// Updates are handled sequentially. Telegram delivers a chat's messages in
// order, and the conversation state machine depends on that ordering.
type Poller struct {
	api         updateSource
	handler     Handler
	pollTimeout int
	logger      zerolog.Logger
}

// NewPoller creates a Poller. pollTimeout is the getUpdates long-poll
// timeout in seconds.
func NewPoller(api updateSource, handler Handler, pollTimeout int, logger zerolog.Logger) (*Poller, error) {
	if api == nil {
		return nil, fmt.Errorf("bot api client not set")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler not set")
	}
	if pollTimeout <= 0 {
		return nil, fmt.Errorf("poll timeout must be positive, got %d", pollTimeout)
	}

	return &Poller{
		api:         api,
		handler:     handler,
		pollTimeout: pollTimeout,
		logger:      logger.With().Str("component", "poller").Logger(),
	}, nil
}

// Serve implements suture.Service.
func (p *Poller) Serve(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.pollTimeout

	updates := p.api.GetUpdatesChan(cfg)
	defer p.api.StopReceivingUpdates()

	p.logger.Info().Int("poll_timeout", p.pollTimeout).Msg("update polling started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("update polling stopped")
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				// The client closes the channel on unrecoverable errors;
				// let the supervisor restart us with a fresh channel.
				return fmt.Errorf("update channel closed")
			}
			p.dispatch(ctx, update)
		}
	}
}

// String implements suture.Service for supervisor logs.
func (p *Poller) String() string {
	return "telegram-poller"
}

func (p *Poller) dispatch(ctx context.Context, update tgbotapi.Update) {
	// Only private text messages drive the conversation; edits, callbacks
	// and media are ignored.
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	if err := p.handler.HandleMessage(ctx, chatID, update.Message.Text); err != nil {
		// Handler errors are already logged with full context; the poll
		// loop keeps going.
		p.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("update not handled")
	}
}
