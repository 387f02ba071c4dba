// SPDX-License-Identifier: MIT

// Package ports defines the interfaces the session domain consumes. The
// protocol implementation, credential persistence and code rendering live
// behind these, keeping the domain free of infrastructure imports.
package ports

import (
	"context"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
)

// Connector is one live protocol connection. Implementations emit lifecycle
// events in emission order on Events and close the channel once no further
// events can follow (after a terminal close or after Close).
type Connector interface {
	// Events yields pairing-code, open and close events for this connection.
	Events() <-chan lifecycle.Event

	// Logout invalidates the server-side session. It is called at most once,
	// bounded by ctx.
	Logout(ctx context.Context) error

	// Close releases the underlying connection. Idempotent.
	Close() error
}

// ConnectorFactory dials new protocol connections. A nil creds blob requests
// fresh pairing; a non-nil blob requests silent resume.
type ConnectorFactory interface {
	Dial(ctx context.Context, id model.SessionID, creds []byte) (Connector, error)
}

// CredentialStore persists per-session authentication material. Calls for
// different IDs may run concurrently; calls for the same ID are serialized by
// the owning controller.
type CredentialStore interface {
	// Load returns the blob for id, or (nil, nil) if none is stored.
	Load(ctx context.Context, id model.SessionID) ([]byte, error)

	// Save atomically replaces the blob for id. A crash mid-save must never
	// leave a half-written blob loadable.
	Save(ctx context.Context, id model.SessionID, blob []byte) error

	// Delete removes the blob for id. Deleting a missing blob is not an error.
	Delete(ctx context.Context, id model.SessionID) error

	// List returns the IDs that currently have a stored blob.
	List(ctx context.Context) ([]model.SessionID, error)
}

// CodeRenderer turns a raw pairing code into a scannable image reference
// (a PNG data URL).
type CodeRenderer interface {
	Render(code string) (string, error)
}
