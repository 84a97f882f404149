// Package server exposes the agent over HTTP: a JSON query endpoint, a
// health check, and a websocket variant that streams progress hints
// while a query runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopsage/shopsage/internal/agent"
	"github.com/shopsage/shopsage/internal/config"
)

// Agent is the query-answering surface the server needs. The
// orchestration loop satisfies it.
type Agent interface {
	Run(ctx context.Context, query string, onProgress agent.ProgressFunc) agent.Result
}

// Server serves the HTTP API.
type Server struct {
	agent Agent
	http  *http.Server
}

// New builds a Server with routes registered.
func New(cfg config.Server, ag Agent) *Server {
	s := &Server{agent: ag}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /ws", s.handleWebsocket)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withRequestLogging(mux),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}
	return s
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
