// Package health provides the liveness and readiness endpoints.
//
// /healthz reports whether the process has finished starting. /readyz also
// runs the registered checks (the preference database, for example) and
// reports which of them fail.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port, checks: make(map[string]CheckFunc)}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// AddCheck registers a readiness check under name.
func (s *Server) AddCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

type status struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

// Handler returns the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, status{Status: "not_ready"})
			return
		}
		writeStatus(w, http.StatusOK, status{Status: "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, status{Status: "not_ready"})
			return
		}
		if failed := s.runChecks(r.Context()); len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, status{Status: "degraded", Failed: failed})
			return
		}
		writeStatus(w, http.StatusOK, status{Status: "ok"})
	})
	return mux
}

func (s *Server) runChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var failed map[string]string
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			if failed == nil {
				failed = make(map[string]string)
			}
			failed[name] = err.Error()
		}
	}
	return failed
}

func writeStatus(w http.ResponseWriter, code int, st status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(st)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
