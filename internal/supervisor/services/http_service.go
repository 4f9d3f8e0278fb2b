// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/dataexplorer/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

// HTTPServerService runs the API server under the api-layer supervisor.
//
// When the Serve context is canceled the server stops accepting connections
// and in-flight queries get up to shutdownTimeout to finish. Connections
// still open after that are closed hard so that a slow warehouse query
// cannot hold up process exit.
//
//	server := &http.Server{Addr: ":8000", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// DefaultShutdownTimeout applies when NewHTTPServerService gets a
// non-positive timeout.
const DefaultShutdownTimeout = 10 * time.Second

// NewHTTPServerService wraps server for supervision.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. A listener failure is returned wrapped,
// which makes the supervisor restart the server; a canceled ctx drains the
// server and returns ctx.Err().
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		return h.drain(ctx.Err(), errCh)
	}
}

func (h *HTTPServerService) drain(cause error, errCh <-chan error) error {
	logging.Info().Dur("timeout", h.shutdownTimeout).Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	err := h.server.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		logging.Warn().Dur("timeout", h.shutdownTimeout).Msg("Requests still running after shutdown timeout, closing connections")
		err = h.server.Close()
	}
	<-errCh

	if err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return cause
}

// String implements fmt.Stringer; suture uses it in event logs.
func (h *HTTPServerService) String() string {
	return h.name
}
