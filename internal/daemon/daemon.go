// SPDX-License-Identifier: MIT

// Package daemon runs the HTTP server and coordinates graceful shutdown:
// stop accepting requests, sweep active sessions with per-session logout
// timeouts, then exit.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/sessiond/internal/config"
	"github.com/ManuGH/sessiond/internal/domain/session/manager"
)

// Deps carries everything Run needs.
type Deps struct {
	Logger   zerolog.Logger
	Config   config.AppConfig
	Handler  http.Handler
	Sessions *manager.Manager
}

// Run serves HTTP until ctx is cancelled, then drains: HTTP shutdown first
// so no new sessions arrive mid-sweep, then the session logout sweep.
func Run(ctx context.Context, deps Deps) error {
	srv := &http.Server{
		Addr:              deps.Config.ListenAddr,
		Handler:           deps.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No blanket write timeout: POST /sessions legitimately waits up to
		// CreateTimeout for the first connector event.
		IdleTimeout: 120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Logger.Info().
			Str("event", "http.listen").
			Str("addr", srv.Addr).
			Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.ShutdownTimeout)
		defer cancel()

		deps.Logger.Info().Str("event", "shutdown.begin").Msg("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Warn().Err(err).Str("event", "shutdown.http_failed").Msg("HTTP shutdown incomplete")
		}

		if err := deps.Sessions.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Warn().Err(err).Str("event", "shutdown.sweep_incomplete").Msg("session sweep incomplete")
		} else {
			deps.Logger.Info().Str("event", "shutdown.sweep_done").Msg("all sessions drained")
		}
		return nil
	})

	return g.Wait()
}
