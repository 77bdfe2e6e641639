// Package server exposes the OCR pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ocrapi/internal/logger"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func New(addr string, handler http.Handler, shutdownTimeout time.Duration) *Server {
	return &Server{
		// Only header reads are bounded; bodies and slow recognition run to completion.
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("Starting API server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced shutdown")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
