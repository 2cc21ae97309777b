// Package progress serves an optional HTTP progress/health endpoint for a
// Driver run, used when --progress-addr is set. It is an external
// collaborator: the Driver pushes state into it, it never reaches back
// into the sort pipeline.
package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/binarysort/extsort/internal/diag"
)

// Server exposes GET /health (200 once the Driver has validated its
// configuration and started the split phase) and GET /progress (the most
// recently reported diag.Stats, as JSON).
type Server struct {
	addr   string
	engine *chi.Mux

	ready atomic.Bool

	mu    sync.RWMutex
	stats diag.Stats
}

// New constructs a Server bound to addr. Call Run in its own goroutine to
// start serving.
func New(addr string) *Server {
	s := &Server{addr: addr, engine: chi.NewRouter()}
	s.engine.Use(middleware.Logger)
	s.registerRoutes()
	return s
}

// Run blocks serving HTTP until the listener fails or the process exits.
func (s *Server) Run() error {
	return http.ListenAndServe(s.addr, s.engine)
}

func (s *Server) registerRoutes() {
	s.engine.Get("/health", s.handleHealth)
	s.engine.Get("/progress", s.handleProgress)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// MarkReady flips /health to 200, called once the Driver has validated its
// configuration and begun the split phase.
func (s *Server) MarkReady() {
	s.ready.Store(true)
}

// SetStats updates the value served from /progress.
func (s *Server) SetStats(stats diag.Stats) {
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
}
