// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package telegram adapts the Bot API to the conversation controller: a
// rate-limited, circuit-breaker-guarded sender and a long-polling update
// service.
package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/aprasetya/filmrec/internal/config"
	"github.com/aprasetya/filmrec/internal/metrics"
)

// botSender is the slice of the Bot API client the sender needs.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers outbound messages through the Bot API.
//
// Every send passes a token-bucket rate limiter (the Bot API allows roughly
// 30 messages per second across all chats) and a circuit breaker that opens
// after consecutive API failures, so a Telegram outage cannot pile up
// blocked handler goroutines.
type Sender struct {
	api     botSender
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[tgbotapi.Message]
	logger  zerolog.Logger
}

// NewSender creates a Sender around an authenticated Bot API client.
func NewSender(api botSender, cfg config.TelegramConfig, logger zerolog.Logger) (*Sender, error) {
	if api == nil {
		return nil, fmt.Errorf("bot api client not set")
	}

	log := logger.With().Str("component", "telegram").Logger()
	threshold := cfg.Breaker.FailureThreshold

	cb := gobreaker.NewCircuitBreaker[tgbotapi.Message](gobreaker.Settings{
		Name:        "telegram-send",
		MaxRequests: cfg.Breaker.MaxRequests,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("send circuit breaker state change")
			metrics.TelegramBreakerState.Set(breakerStateFloat(to))
		},
	})
	metrics.TelegramBreakerState.Set(breakerStateFloat(gobreaker.StateClosed))

	return &Sender{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst),
		cb:      cb,
		logger:  log,
	}, nil
}

// SendText sends a plain text message.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendMarkdown sends a Markdown-formatted message.
func (s *Sender) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return s.send(ctx, msg)
}

// SendKeyboard sends a message with a one-time reply keyboard, one button
// per option and one option per row, in order.
func (s *Sender) SendKeyboard(ctx context.Context, chatID int64, text string, options []string) error {
	rows := make([][]tgbotapi.KeyboardButton, len(options))
	for i, opt := range options {
		rows[i] = tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(opt))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return s.send(ctx, msg)
}

func (s *Sender) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := s.cb.Execute(func() (tgbotapi.Message, error) {
		return s.api.Send(msg)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.TelegramSendsTotal.WithLabelValues("breaker_open").Inc()
			s.logger.Warn().Int64("chat_id", msg.ChatID).Msg("send rejected, breaker open")
		} else {
			metrics.TelegramSendsTotal.WithLabelValues("error").Inc()
			s.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("send failed")
		}
		return fmt.Errorf("telegram send: %w", err)
	}

	metrics.TelegramSendsTotal.WithLabelValues("ok").Inc()
	return nil
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
