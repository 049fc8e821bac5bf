// Package server exposes watched documents and metrics over HTTP.
//
// Documents are single-threaded, so handlers never touch one. The goroutine
// that owns a document publishes its Summary into Snapshots after every
// change and handlers read from there.
package server

import (
	"encoding/json"
	"maps"
	"net/http"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/metrics"
	"github.com/zjrosen/schematic/internal/presentation"
	"github.com/zjrosen/schematic/internal/schematic"
)

// Snapshots holds the latest summary of each watched document.
type Snapshots struct {
	mu   sync.RWMutex
	docs map[string]presentation.DocumentDTO
}

func NewSnapshots() *Snapshots {
	return &Snapshots{docs: make(map[string]presentation.DocumentDTO)}
}

// Put replaces the summary stored for path.
func (s *Snapshots) Put(path string, summary schematic.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = presentation.DocumentDTO{Path: path, Summary: summary}
}

func (s *Snapshots) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
}

// List returns every snapshot ordered by path.
func (s *Snapshots) List() []presentation.DocumentDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]presentation.DocumentDTO, 0, len(s.docs))
	for _, path := range slices.Sorted(maps.Keys(s.docs)) {
		out = append(out, s.docs[path])
	}
	return out
}

// Find returns the snapshot whose path has the given base name.
func (s *Snapshots) Find(name string) (presentation.DocumentDTO, bool) {
	for _, dto := range s.List() {
		if filepath.Base(dto.Path) == name {
			return dto, true
		}
	}
	return presentation.DocumentDTO{}, false
}

// NewRouter serves:
//
//	GET /healthz
//	GET /metrics           Prometheus exposition
//	GET /documents         every snapshot
//	GET /documents/{name}  one snapshot by file base name
func NewRouter(c *metrics.Collector, snaps *Snapshots) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(c.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", c.Handler())
	r.Get("/documents", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, snaps.List())
	})
	r.Get("/documents/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		dto, ok := snaps.Find(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found: " + name})
			return
		}
		writeJSON(w, http.StatusOK, dto)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatCLI, "Encoding response failed", err)
	}
}
