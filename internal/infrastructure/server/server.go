// Package server hosts the plain HTTP servers Wavebreaker exposes: the
// legacy game protocol, the JSON admin API, and the Kubernetes health probe.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pannpers/go-logging/logging"
)

// HTTPServer wraps a single http.Server with the start/stop lifecycle every
// Wavebreaker HTTP surface shares: a bounded handler timeout, a fixed
// shutdown budget, and structured start/stop logging.
type HTTPServer struct {
	srv             *http.Server
	logger          *logging.Logger
	name            string
	shutdownTimeout time.Duration
	address         string
}

// NewHTTPServer builds an HTTPServer listening on address and serving
// handler, with every request bounded by handlerTimeout.
func NewHTTPServer(name, address string, handler http.Handler, handlerTimeout, readHeaderTimeout, readTimeout, idleTimeout, shutdownTimeout time.Duration, logger *logging.Logger) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              address,
			Handler:           http.TimeoutHandler(handler, handlerTimeout, ""),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger:          logger,
		name:            name,
		shutdownTimeout: shutdownTimeout,
		address:         address,
	}
}

// Start begins listening and serving. It blocks until Stop is called.
func (s *HTTPServer) Start() error {
	s.logger.Info(context.Background(), fmt.Sprintf("%s server starting on %s", s.name, s.address))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully drains in-flight requests within shutdownTimeout.
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, fmt.Sprintf("shutting down %s server gracefully", s.name), slog.Duration("timeout", s.shutdownTimeout))
	return s.srv.Shutdown(ctx)
}
