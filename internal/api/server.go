// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of sessiond.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/sessiond/internal/api/middleware"
	"github.com/ManuGH/sessiond/internal/config"
	"github.com/ManuGH/sessiond/internal/domain/session/manager"
	"github.com/ManuGH/sessiond/internal/health"
	xglog "github.com/ManuGH/sessiond/internal/log"
)

// Server translates HTTP requests into registry operations and registry
// state into responses. It holds no session state of its own.
type Server struct {
	cfg      config.AppConfig
	sessions *manager.Manager
	health   *health.Manager
}

// New constructs the API server.
func New(cfg config.AppConfig, sessions *manager.Manager, healthMgr *health.Manager) *Server {
	return &Server{cfg: cfg, sessions: sessions, health: healthMgr}
}

// Handler builds the router with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics: s.cfg.MetricsEnabled,
		EnableLogging: true,
		RateLimitRPM:  s.cfg.RateLimitRPM,
	})

	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{phone}/status", s.handleSessionStatus)
	r.Delete("/sessions/{phone}", s.handleDeleteSession)

	if s.health != nil {
		r.Get("/healthz", s.health.HandleHealth)
		r.Get("/readyz", s.health.HandleReady)
	}

	return r
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
