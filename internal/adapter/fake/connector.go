// SPDX-License-Identifier: MIT

// Package fake provides scripted in-memory connectors for tests.
package fake

import (
	"context"
	"sync"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
	"github.com/ManuGH/sessiond/internal/domain/session/ports"
)

// Connector is a hand-driven ports.Connector. Tests push events through
// Emit and observe Logout/Close calls.
type Connector struct {
	mu        sync.Mutex
	events    chan lifecycle.Event
	closed    bool
	loggedOut bool

	// LogoutFn, when set, replaces the default no-op logout. Lets tests
	// simulate a logout call that hangs past its deadline.
	LogoutFn func(ctx context.Context) error
}

// NewConnector returns an open connector with a buffered event stream.
func NewConnector() *Connector {
	return &Connector{events: make(chan lifecycle.Event, 16)}
}

// Emit pushes an event to the controller. No-op after Close.
func (c *Connector) Emit(ev lifecycle.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.events <- ev
}

// EmitQR is shorthand for a pairing-code event.
func (c *Connector) EmitQR(code string) {
	c.Emit(lifecycle.Event{Kind: lifecycle.EvPairingCode, Code: code})
}

// EmitOpen is shorthand for an authenticated event carrying creds.
func (c *Connector) EmitOpen(creds []byte) {
	c.Emit(lifecycle.Event{Kind: lifecycle.EvOpen, Creds: creds})
}

// EmitClose is shorthand for a close event with the given reason.
func (c *Connector) EmitClose(reason model.CloseReason) {
	c.Emit(lifecycle.Event{Kind: lifecycle.EvClose, Reason: reason})
}

// Events implements ports.Connector.
func (c *Connector) Events() <-chan lifecycle.Event { return c.events }

// Logout implements ports.Connector.
func (c *Connector) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.loggedOut = true
	fn := c.LogoutFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// LoggedOut reports whether Logout was invoked.
func (c *Connector) LoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedOut
}

// Close implements ports.Connector. Idempotent; closes the event stream.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

// Closed reports whether Close was invoked.
func (c *Connector) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Factory hands out connectors per dial and records dial history.
type Factory struct {
	mu    sync.Mutex
	next  []*Connector
	dials []Dial

	// DialErr, when set, fails every dial.
	DialErr error
}

// Dial records one factory invocation.
type Dial struct {
	ID    model.SessionID
	Creds []byte
	Conn  *Connector
}

// NewFactory returns an empty factory; queue connectors with Expect.
func NewFactory() *Factory { return &Factory{} }

// SetDialErr makes every subsequent Dial fail with err; nil restores dialing.
func (f *Factory) SetDialErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DialErr = err
}

// Expect queues a connector to be returned by the next Dial call.
func (f *Factory) Expect(c *Connector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = append(f.next, c)
}

// Dial implements ports.ConnectorFactory. If no connector was queued, a
// fresh one is created.
func (f *Factory) Dial(_ context.Context, id model.SessionID, creds []byte) (ports.Connector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DialErr != nil {
		return nil, f.DialErr
	}
	var c *Connector
	if len(f.next) > 0 {
		c = f.next[0]
		f.next = f.next[1:]
	} else {
		c = NewConnector()
	}
	f.dials = append(f.dials, Dial{ID: id, Creds: creds, Conn: c})
	return c, nil
}

// Dials returns a copy of the dial history.
func (f *Factory) Dials() []Dial {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Dial, len(f.dials))
	copy(out, f.dials)
	return out
}

// LastDial returns the most recent dial, if any.
func (f *Factory) LastDial() (Dial, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.dials) == 0 {
		return Dial{}, false
	}
	return f.dials[len(f.dials)-1], true
}
