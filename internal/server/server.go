// Package server exposes the cache engine over HTTP: the /put, /get, and
// /query data plane plus the /cache/* control plane for status, stats,
// and policy switching.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amitzarchi/quality-score-eviction/internal/accesslog"
	"github.com/amitzarchi/quality-score-eviction/internal/cache"
	"github.com/amitzarchi/quality-score-eviction/internal/logging"
	"github.com/amitzarchi/quality-score-eviction/internal/upstream"
)

// Handlers holds dependencies for the cache HTTP handlers.
type Handlers struct {
	Engine    *cache.Engine
	Upstream  upstream.Responder
	Log       accesslog.Writer
	LogReader accesslog.Reader
}

// NewRouter builds the HTTP router with middleware, health, metrics, and
// all cache endpoints mounted.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(logging.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/put", h.put)
	r.Post("/get", h.get)
	r.Post("/query", h.query)
	r.Post("/flush", h.flush)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/stats-summary", h.statsSummary)
		r.Get("/policies", h.policies)
		r.Get("/log", h.recentLog)
		r.Post("/switch-policy", h.switchPolicy)
	})

	return r
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
