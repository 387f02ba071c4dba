// SPDX-License-Identifier: MIT

// Package wsbridge implements the session connector against an external
// protocol bridge. The bridge owns connection establishment, message framing
// and encryption; sessiond only consumes its lifecycle frames over a
// websocket.
package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
	"github.com/ManuGH/sessiond/internal/domain/session/ports"
	xglog "github.com/ManuGH/sessiond/internal/log"
)

// frame is one lifecycle message from the bridge.
//
//	{"type":"qr","code":"..."}
//	{"type":"open","creds":"<base64>"}
//	{"type":"close","reason":"logged_out"}
type frame struct {
	Type   string `json:"type"`
	Code   string `json:"code,omitempty"`
	Creds  []byte `json:"creds,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Factory dials bridge connections for sessions.
type Factory struct {
	// BridgeURL is the websocket endpoint of the bridge, e.g.
	// ws://127.0.0.1:3001/connect.
	BridgeURL string
	Logger    zerolog.Logger
}

// NewFactory validates the bridge URL and returns a factory.
func NewFactory(bridgeURL string, logger zerolog.Logger) (*Factory, error) {
	u, err := url.Parse(bridgeURL)
	if err != nil {
		return nil, fmt.Errorf("parse bridge URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("bridge URL must be ws:// or wss://, got %q", u.Scheme)
	}
	return &Factory{BridgeURL: bridgeURL, Logger: logger}, nil
}

// Dial implements ports.ConnectorFactory. A non-nil creds blob is forwarded
// to the bridge to request silent resume.
func (f *Factory) Dial(ctx context.Context, id model.SessionID, creds []byte) (ports.Connector, error) {
	u, err := url.Parse(f.BridgeURL)
	if err != nil {
		return nil, fmt.Errorf("parse bridge URL: %w", err)
	}
	q := u.Query()
	q.Set("session", id.String())
	u.RawQuery = q.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("dial bridge: %w", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}

	if creds != nil {
		if err := ws.WriteJSON(frame{Type: "resume", Creds: creds}); err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("send resume frame: %w", err)
		}
	} else if err := ws.WriteJSON(frame{Type: "pair"}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("send pair frame: %w", err)
	}

	c := &Connector{
		ws:     ws,
		events: make(chan lifecycle.Event, 8),
		done:   make(chan struct{}),
		logger: f.Logger.With().Str(xglog.FieldSessionID, id.String()).Logger(),
	}
	go c.readLoop()
	return c, nil
}

// Connector is one live bridge connection.
type Connector struct {
	ws     *websocket.Conn
	events chan lifecycle.Event
	done   chan struct{}
	logger zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// emit delivers an event unless the connector has been closed, so the read
// loop can never block on a consumer that already went away.
func (c *Connector) emit(ev lifecycle.Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// Events implements ports.Connector.
func (c *Connector) Events() <-chan lifecycle.Event {
	return c.events
}

// readLoop decodes bridge frames into lifecycle events until the socket
// breaks or a terminal close frame arrives. The events channel is closed on
// exit so the controller observes end-of-stream.
func (c *Connector) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			// A socket error with no prior close frame is a transport-level
			// drop; the controller maps channel closure to a network close.
			return
		}
		var fr frame
		if err := json.Unmarshal(data, &fr); err != nil {
			c.logger.Warn().Err(err).Msg("discarding malformed bridge frame")
			continue
		}
		switch fr.Type {
		case "qr":
			if !c.emit(lifecycle.Event{Kind: lifecycle.EvPairingCode, Code: fr.Code}) {
				return
			}
		case "open":
			if !c.emit(lifecycle.Event{Kind: lifecycle.EvOpen, Creds: fr.Creds}) {
				return
			}
		case "close":
			c.emit(lifecycle.Event{Kind: lifecycle.EvClose, Reason: mapReason(fr.Reason)})
			return
		default:
			c.logger.Debug().Str("type", fr.Type).Msg("ignoring unknown bridge frame")
		}
	}
}

func mapReason(raw string) model.CloseReason {
	switch model.CloseReason(raw) {
	case model.ReasonLoggedOut, model.ReasonReplaced, model.ReasonNetwork, model.ReasonStreamError:
		return model.CloseReason(raw)
	default:
		return model.ReasonUnknown
	}
}

// Logout implements ports.Connector.
func (c *Connector) Logout(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
	}
	if err := c.ws.WriteJSON(frame{Type: "logout"}); err != nil {
		return fmt.Errorf("send logout frame: %w", err)
	}
	return nil
}

// Close implements ports.Connector. Idempotent.
func (c *Connector) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}
