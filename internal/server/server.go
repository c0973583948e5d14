// Package server exposes the dispatcher over HTTP.
//
// The routes follow the REST proxy of a permissioned ledger platform so
// existing clients can point at this server unchanged:
//
//	POST /restproxy/api/v2/channels/{channel}/transactions
//	POST /restproxy/api/v2/channels/{channel}/chaincode-queries
//	GET  /health
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/verifylog/internal/dispatch"
)

// Config configures a Server.
type Config struct {
	Listen  string
	Channel string

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server provides the HTTP endpoints.
type Server struct {
	dispatcher *dispatch.Dispatcher
	cfg        Config
	logger     *slog.Logger
	server     *http.Server
}

// New creates a Server. Call ListenAndServe to start it.
func New(d *dispatch.Dispatcher, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		dispatcher: d,
		cfg:        cfg,
		logger:     logger,
	}
	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

const channelPath = "/restproxy/api/v2/channels/{channel}"

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Full templates on the root router, so a method mismatch is a 405
	// rather than a subrouter miss.
	r.HandleFunc(channelPath+"/transactions", s.handleTransaction).Methods(http.MethodPost)
	r.HandleFunc(channelPath+"/chaincode-queries", s.handleQuery).Methods(http.MethodPost)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Listen, "channel", s.cfg.Channel)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server closed gracefully")
	return nil
}
