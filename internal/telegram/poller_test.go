// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// fakeUpdateSource feeds scripted updates through a channel.
type fakeUpdateSource struct {
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeUpdateSource) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeUpdateSource) StopReceivingUpdates() {
	f.stopped = true
}

// recordingHandler records dispatched messages.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
	chatIDs  []int64
	err      error
}

func (h *recordingHandler) HandleMessage(_ context.Context, chatID int64, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, text)
	h.chatIDs = append(h.chatIDs, chatID)
	return h.err
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestPollerImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*Poller)(nil)
}

func TestPollerDispatchesTextMessages(t *testing.T) {
	source := &fakeUpdateSource{updates: make(chan tgbotapi.Update, 8)}
	handler := &recordingHandler{}
	p, err := NewPoller(source, handler, 30, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPoller() error: %v", err)
	}

	source.updates <- textUpdate(1, "/start")
	source.updates <- textUpdate(1, "Action")
	source.updates <- textUpdate(2, "/start")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	waitFor(t, func() bool { return len(handler.snapshot()) == 3 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	got := handler.snapshot()
	want := []string{"/start", "Action", "/start"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !source.stopped {
		t.Error("StopReceivingUpdates not called on shutdown")
	}
}

func TestPollerSkipsNonTextUpdates(t *testing.T) {
	source := &fakeUpdateSource{updates: make(chan tgbotapi.Update, 8)}
	handler := &recordingHandler{}
	p, err := NewPoller(source, handler, 30, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPoller() error: %v", err)
	}

	source.updates <- tgbotapi.Update{} // no message at all
	source.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}} // photo, sticker, ...
	source.updates <- textUpdate(1, "Drama")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	waitFor(t, func() bool { return len(handler.snapshot()) == 1 })
	cancel()
	<-done

	if got := handler.snapshot(); len(got) != 1 || got[0] != "Drama" {
		t.Errorf("dispatched %v, want only Drama", got)
	}
}

func TestPollerReturnsErrorWhenChannelCloses(t *testing.T) {
	source := &fakeUpdateSource{updates: make(chan tgbotapi.Update)}
	handler := &recordingHandler{}
	p, err := NewPoller(source, handler, 30, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPoller() error: %v", err)
	}

	close(source.updates)

	if err := p.Serve(context.Background()); err == nil {
		t.Error("Serve() returned nil on closed channel, supervisor cannot restart")
	}
}

func TestPollerKeepsGoingOnHandlerError(t *testing.T) {
	source := &fakeUpdateSource{updates: make(chan tgbotapi.Update, 8)}
	handler := &recordingHandler{err: errors.New("engine down")}
	p, err := NewPoller(source, handler, 30, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPoller() error: %v", err)
	}

	source.updates <- textUpdate(1, "Action")
	source.updates <- textUpdate(1, "Drama")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	waitFor(t, func() bool { return len(handler.snapshot()) == 2 })
	cancel()
	<-done
}

func TestNewPollerValidation(t *testing.T) {
	source := &fakeUpdateSource{updates: make(chan tgbotapi.Update)}
	handler := &recordingHandler{}

	if _, err := NewPoller(nil, handler, 30, zerolog.Nop()); err == nil {
		t.Error("NewPoller() accepted nil source")
	}
	if _, err := NewPoller(source, nil, 30, zerolog.Nop()); err == nil {
		t.Error("NewPoller() accepted nil handler")
	}
	if _, err := NewPoller(source, handler, 0, zerolog.Nop()); err == nil {
		t.Error("NewPoller() accepted zero poll timeout")
	}
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
