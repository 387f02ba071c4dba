// SPDX-License-Identifier: MIT

// Package manager owns the process-wide session registry and the per-session
// lifecycle controllers. All session mutation funnels through here.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
	"github.com/ManuGH/sessiond/internal/domain/session/ports"
	"github.com/ManuGH/sessiond/internal/metrics"
)

// Config bounds the manager's timing and retry behaviour.
type Config struct {
	CreateTimeout        time.Duration
	LogoutTimeout        time.Duration
	ShutdownTimeout      time.Duration
	ReconnectMaxRetries  int
	ReconnectMaxInterval time.Duration

	// ReconnectInitialInterval seeds the backoff; defaults to one second.
	ReconnectInitialInterval time.Duration
}

// Manager is the session registry. It maps session IDs to their controllers,
// admits new sessions, serves snapshots and drives the shutdown sweep.
// Records themselves are mutated only by their owning controller.
type Manager struct {
	cfg      Config
	store    ports.CredentialStore
	factory  ports.ConnectorFactory
	renderer ports.CodeRenderer
	logger   zerolog.Logger

	rootCtx    context.Context
	rootCancel context.CancelFunc
	runner     *joiner

	mu       sync.Mutex
	sessions map[model.SessionID]*controller
	closing  bool
}

// New constructs a Manager. Call Shutdown to release it.
func New(cfg Config, store ports.CredentialStore, factory ports.ConnectorFactory, renderer ports.CodeRenderer, logger zerolog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:        cfg,
		store:      store,
		factory:    factory,
		renderer:   renderer,
		logger:     logger,
		rootCtx:    ctx,
		rootCancel: cancel,
		runner:     &joiner{},
		sessions:   make(map[model.SessionID]*controller),
	}
}

// Create admits a new session for id and awaits its first significant event
// (pairing code rendered, authenticated, or terminal failure), bounded by
// CreateTimeout. Expiry reports CreatePending without failing the session.
func (m *Manager) Create(ctx context.Context, id model.SessionID) (CreateResult, error) {
	c, err := m.startSession(ctx, id)
	if err != nil {
		return CreateResult{}, err
	}
	res := c.future.await(ctx, m.cfg.CreateTimeout)
	return res, nil
}

// startSession reserves the id in the registry, dials a connector and spawns
// the owning controller. The reservation is rolled back if the dial fails.
func (m *Manager) startSession(ctx context.Context, id model.SessionID) (*controller, error) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, lifecycle.ErrShuttingDown
	}
	if _, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrConflict, id)
	}
	c := newController(m, id, time.Now())
	m.sessions[id] = c
	metrics.SessionsActive.Inc()
	m.mu.Unlock()

	// A load failure is not fatal for create: the session falls back to
	// fresh pairing instead of refusing admission.
	creds, err := m.store.Load(ctx, id)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("session_id", id.String()).
			Str("event", "creds.load_failed").
			Msg("loading persisted credentials failed, starting fresh pairing")
		creds = nil
	}

	conn, err := m.factory.Dial(ctx, id, creds)
	if err != nil {
		m.removeSession(id)
		return nil, fmt.Errorf("%w: %v", lifecycle.ErrConnectorFailure, err)
	}
	c.conn = conn

	if !m.runner.Go(func() { c.run(m.rootCtx) }) {
		_ = conn.Close()
		m.removeSession(id)
		return nil, lifecycle.ErrShuttingDown
	}

	m.logger.Info().
		Str("session_id", id.String()).
		Str("event", "session.created").
		Bool("silent_resume", creds != nil).
		Msg("session admitted")
	return c, nil
}

// Get returns a read-only snapshot of the session, if present.
func (m *Manager) Get(id model.SessionID) (model.Snapshot, bool) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return model.Snapshot{}, false
	}
	return c.snapshot(), true
}

// ListIDs returns the ids of all active sessions.
func (m *Manager) ListIDs() []model.SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]model.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Snapshots returns read-only snapshots of all active sessions.
func (m *Manager) Snapshots() []model.Snapshot {
	m.mu.Lock()
	controllers := make([]*controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		controllers = append(controllers, c)
	}
	m.mu.Unlock()

	snaps := make([]model.Snapshot, 0, len(controllers))
	for _, c := range controllers {
		snaps = append(snaps, c.snapshot())
	}
	return snaps
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Remove logs the session out and tears it down, blocking until the
// controller has finished or LogoutTimeout expires.
func (m *Manager) Remove(ctx context.Context, id model.SessionID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", lifecycle.ErrNotFound, id)
	}

	c.requestLogout()

	timer := time.NewTimer(m.cfg.LogoutTimeout)
	defer timer.Stop()
	select {
	case <-c.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: logout of %s", lifecycle.ErrTimeout, id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resume restores every session that has a persisted credential blob, using
// silent resume. Dial failures are logged per session and skipped.
func (m *Manager) Resume(ctx context.Context) {
	ids, err := m.store.List(ctx)
	if err != nil {
		m.logger.Error().Err(err).Str("event", "resume.scan_failed").Msg("credential scan failed, skipping resume")
		return
	}
	for _, id := range ids {
		if _, err := m.startSession(ctx, id); err != nil {
			m.logger.Warn().
				Err(err).
				Str("session_id", id.String()).
				Str("event", "resume.failed").
				Msg("could not resume persisted session")
		}
	}
}

// Shutdown stops admitting sessions, logs every active session out in
// parallel with a per-session timeout, and joins all controllers bounded by
// ctx. Individual logout failures are logged and never block the sweep.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	controllers := make([]*controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		controllers = append(controllers, c)
	}
	m.mu.Unlock()

	var g errgroup.Group
	for _, c := range controllers {
		g.Go(func() error {
			c.requestLogout()
			timer := time.NewTimer(m.cfg.LogoutTimeout)
			defer timer.Stop()
			select {
			case <-c.done:
			case <-timer.C:
				m.logger.Warn().
					Str("session_id", c.id.String()).
					Str("event", "shutdown.logout_timeout").
					Msg("session logout exceeded its timeout, proceeding")
			case <-ctx.Done():
			}
			return nil
		})
	}
	_ = g.Wait()

	m.rootCancel()
	return m.runner.CloseAndWait(ctx)
}

// removeSession drops the registry entry for id. Called by controllers on
// terminal exit and by startSession rollback.
func (m *Manager) removeSession(id model.SessionID) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		metrics.SessionsActive.Dec()
	}
}
