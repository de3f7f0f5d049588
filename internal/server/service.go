// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aprasetya/filmrec/internal/config"
)

// httpServer matches the *http.Server lifecycle methods the service needs.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Service runs the ops HTTP server under a supervisor. It translates
// ListenAndServe's blocking pattern into suture's context-aware Serve:
// the server runs in a goroutine and context cancellation triggers a
// graceful Shutdown with the configured timeout.
type Service struct {
	server          httpServer
	shutdownTimeout time.Duration
}

// NewService builds the supervised ops server from configuration.
func NewService(cfg config.ServerConfig, handler http.Handler) *Service {
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	return &Service{server: srv, shutdownTimeout: cfg.Timeout}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ops server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The serve context is already canceled; shutdown needs its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Service) String() string {
	return "ops-server"
}
