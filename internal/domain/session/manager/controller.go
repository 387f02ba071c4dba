// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
	"github.com/ManuGH/sessiond/internal/domain/session/ports"
	xglog "github.com/ManuGH/sessiond/internal/log"
	"github.com/ManuGH/sessiond/internal/metrics"
)

// controller is the single writer for one session record. It consumes
// connector events in emission order, one at a time, and resolves them into
// state transitions via the lifecycle tables.
type controller struct {
	mgr *Manager
	id  model.SessionID

	mu  sync.Mutex
	rec *model.SessionRecord

	// conn is owned by the controller goroutine after startSession hands it
	// over; reconnects swap it in place.
	conn ports.Connector

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	future *createFuture
	logger zerolog.Logger
}

func newController(m *Manager, id model.SessionID, now time.Time) *controller {
	return &controller{
		mgr:    m,
		id:     id,
		rec:    model.NewSessionRecord(id, now),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		future: newCreateFuture(),
		logger: m.logger.With().Str(xglog.FieldSessionID, id.String()).Logger(),
	}
}

// requestLogout asks the controller to log out and exit. Idempotent.
func (c *controller) requestLogout() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *controller) snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Snapshot()
}

func (c *controller) dispatch(ev lifecycle.Event) (lifecycle.Transition, error) {
	c.mu.Lock()
	tr, err := lifecycle.Dispatch(c.rec, ev, time.Now())
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, ev.Kind.String()).
			Msg("dropped lifecycle event")
		return tr, err
	}
	metrics.SessionEventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	c.logger.Debug().
		Str(xglog.FieldEvent, ev.Kind.String()).
		Str(xglog.FieldOldState, string(tr.From)).
		Str(xglog.FieldNewState, string(tr.To)).
		Msg("lifecycle transition")
	return tr, nil
}

func (c *controller) run(ctx context.Context) {
	defer close(c.done)
	defer func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}()
	defer c.mgr.removeSession(c.id)

	for {
		select {
		case ev, ok := <-c.conn.Events():
			if !ok {
				// Connector went away without a terminal close; treat it as
				// a transient network drop.
				ev = lifecycle.Event{Kind: lifecycle.EvClose, Reason: model.ReasonNetwork}
			}
			switch ev.Kind {
			case lifecycle.EvPairingCode:
				c.onPairingCode(ev)
			case lifecycle.EvOpen:
				if persistFailed := c.onOpen(ctx, ev); persistFailed {
					if !c.reconnect(ctx) {
						return
					}
				}
			case lifecycle.EvClose:
				if terminal := c.onClose(ctx, ev); terminal {
					return
				}
				if !c.reconnect(ctx) {
					return
				}
			default:
				c.logger.Warn().
					Str(xglog.FieldEvent, ev.Kind.String()).
					Msg("ignoring unexpected connector event")
			}
		case <-c.stopCh:
			c.onLogout(ctx)
			return
		case <-ctx.Done():
			return
		}
	}
}

// onPairingCode renders the code and stores the image in the record. A new
// code supersedes any previous one. Render failures keep the session alive;
// the connector will emit a fresh code on its next rotation.
func (c *controller) onPairingCode(ev lifecycle.Event) {
	url, err := c.mgr.renderer.Render(ev.Code)
	if err != nil {
		c.logger.Error().Err(err).Str(xglog.FieldEvent, "qr.render_failed").Msg("pairing code render failed")
		c.future.resolve(CreateResult{
			Status: CreateFailed,
			Err:    fmt.Errorf("%w: %v", lifecycle.ErrConnectorFailure, err),
		})
		return
	}
	if _, err := c.dispatch(lifecycle.Event{Kind: lifecycle.EvPairingCode, Code: url}); err != nil {
		return
	}
	c.future.resolve(CreateResult{Status: CreateQR, CodeURL: url})
}

// onOpen persists credentials and marks the session authenticated. A save
// failure must not pretend the session is durable: the connection is parked
// in disconnected state and retried, surfacing the persistence error.
func (c *controller) onOpen(ctx context.Context, ev lifecycle.Event) (persistFailed bool) {
	if ev.Creds != nil {
		if err := c.mgr.store.Save(ctx, c.id, ev.Creds); err != nil {
			c.logger.Error().Err(err).Str(xglog.FieldEvent, "creds.save_failed").Msg("credential persistence failed")
			_, _ = c.dispatch(lifecycle.Event{
				Kind:   lifecycle.EvClose,
				Reason: model.ReasonUnknown,
				Err:    fmt.Errorf("%w: %v", lifecycle.ErrPersistence, err),
			})
			if old := c.conn; old != nil {
				_ = old.Close()
			}
			return true
		}
	}
	if _, err := c.dispatch(lifecycle.Event{Kind: lifecycle.EvOpen}); err != nil {
		return false
	}
	c.logger.Info().Str(xglog.FieldEvent, "session.authenticated").Msg("session authenticated")
	c.future.resolve(CreateResult{Status: CreateAuthenticated})
	return false
}

// onClose consults the policy table. Terminal closes erase credentials where
// the policy says so and end the controller; transient ones hand control to
// the reconnect loop.
func (c *controller) onClose(ctx context.Context, ev lifecycle.Event) (terminal bool) {
	pol := lifecycle.PolicyFor(ev.Reason)
	if _, err := c.dispatch(ev); err != nil {
		return true
	}
	if !pol.Terminal {
		c.logger.Info().
			Str(xglog.FieldReason, string(ev.Reason)).
			Str(xglog.FieldEvent, "session.disconnected").
			Msg("transient disconnect, scheduling reconnect")
		return false
	}

	if pol.EraseCreds {
		if err := c.mgr.store.Delete(ctx, c.id); err != nil {
			c.logger.Error().Err(err).Str(xglog.FieldEvent, "creds.delete_failed").Msg("credential delete failed")
		}
	}
	c.logger.Info().
		Str(xglog.FieldReason, string(ev.Reason)).
		Str(xglog.FieldEvent, "session.closed").
		Msg("session closed")
	c.future.resolve(CreateResult{
		Status: CreateFailed,
		Err:    fmt.Errorf("session closed: %s", ev.Reason),
	})
	return true
}

// reconnect re-dials the connector with persisted credentials under
// exponential backoff. Returns false once the controller should exit:
// retries exhausted, logout requested, or shutdown.
func (c *controller) reconnect(ctx context.Context) bool {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	if c.mgr.cfg.ReconnectInitialInterval > 0 {
		bo.InitialInterval = c.mgr.cfg.ReconnectInitialInterval
	}
	bo.MaxInterval = c.mgr.cfg.ReconnectMaxInterval

	// The retry budget lives in the record: Attempts resets only on a
	// successful open, so a bridge that accepts dials and drops them right
	// away still runs out of retries instead of restarting the count on
	// every re-entry.
	for {
		c.mu.Lock()
		attempt := c.rec.Attempts + 1
		c.mu.Unlock()
		if attempt > c.mgr.cfg.ReconnectMaxRetries {
			break
		}

		timer := time.NewTimer(bo.NextBackOff())
		select {
		case <-timer.C:
		case <-c.stopCh:
			timer.Stop()
			c.onLogout(ctx)
			return false
		case <-ctx.Done():
			timer.Stop()
			return false
		}

		if _, err := c.dispatch(lifecycle.Event{Kind: lifecycle.EvReconnect}); err != nil {
			return false
		}
		metrics.ReconnectAttemptsTotal.Inc()

		creds, err := c.mgr.store.Load(ctx, c.id)
		if err != nil {
			c.logger.Warn().Err(err).Str(xglog.FieldEvent, "creds.load_failed").Msg("credential load failed before reconnect")
		}

		conn, err := c.mgr.factory.Dial(ctx, c.id, creds)
		if err == nil {
			if old := c.conn; old != nil {
				_ = old.Close()
			}
			c.conn = conn
			c.logger.Info().
				Int(xglog.FieldAttempt, attempt).
				Str(xglog.FieldEvent, "session.reconnected").
				Msg("connector re-established")
			return true
		}

		c.logger.Warn().
			Err(err).
			Int(xglog.FieldAttempt, attempt).
			Str(xglog.FieldEvent, "session.reconnect_failed").
			Msg("reconnect attempt failed")
		_, _ = c.dispatch(lifecycle.Event{
			Kind:   lifecycle.EvClose,
			Reason: model.ReasonNetwork,
			Err:    err,
		})
	}

	_, _ = c.dispatch(lifecycle.Event{Kind: lifecycle.EvRetriesExhausted})
	c.logger.Error().Str(xglog.FieldEvent, "session.retries_exhausted").Msg("giving up on reconnect")
	c.future.resolve(CreateResult{
		Status: CreateFailed,
		Err:    fmt.Errorf("%w: reconnect retries exhausted", lifecycle.ErrConnectorFailure),
	})
	return false
}

// onLogout performs the explicit logout path: connector logout bounded by
// LogoutTimeout, credential erase, terminal transition.
func (c *controller) onLogout(ctx context.Context) {
	lctx, cancel := context.WithTimeout(ctx, c.mgr.cfg.LogoutTimeout)
	defer cancel()

	if c.conn != nil {
		if err := c.conn.Logout(lctx); err != nil {
			c.logger.Warn().Err(err).Str(xglog.FieldEvent, "session.logout_failed").Msg("connector logout failed")
		}
	}
	if err := c.mgr.store.Delete(ctx, c.id); err != nil {
		c.logger.Error().Err(err).Str(xglog.FieldEvent, "creds.delete_failed").Msg("credential delete failed")
	}
	_, _ = c.dispatch(lifecycle.Event{Kind: lifecycle.EvLogoutRequested})
	c.logger.Info().Str(xglog.FieldEvent, "session.logged_out").Msg("session logged out")
	c.future.resolve(CreateResult{
		Status: CreateFailed,
		Err:    fmt.Errorf("session logged out"),
	})
}
