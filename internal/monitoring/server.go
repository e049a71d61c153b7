// internal/monitoring/server.go
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Server is the optional status listener for long harvest runs. It
// serves health, metrics and a per-show summary of the legacy archive
// index.
type Server struct {
	metrics *Metrics
	logger  utils.Logger
	addr    string
	started time.Time

	mu    sync.RWMutex
	index legacysite.Index
}

// NewServer creates a status server bound to addr.
func NewServer(addr string, metrics *Metrics, logger utils.Logger) *Server {
	return &Server{
		metrics: metrics,
		logger:  logger,
		addr:    addr,
		started: time.Now(),
	}
}

// SetLegacyIndex publishes the crawled archive index to the debug
// endpoint. Safe to call while the server is running.
func (s *Server) SetLegacyIndex(index legacysite.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/debug/legacy-index", s.handleLegacyIndex).Methods(http.MethodGet)
	return r
}

// Start runs the listener until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Status server shutdown failed: %v", err)
		}
	}()

	s.logger.Infof("Status server listening on %s", s.addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// handleLegacyIndex reports how many archive episodes each show has.
// The full index keys episodes by number, which can be fractional, so
// only counts go over the wire.
func (s *Server) handleLegacyIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	counts := make(map[string]int, len(s.index))
	for slug, episodes := range s.index {
		counts[slug] = len(episodes)
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}
