// SPDX-License-Identifier: MIT

package model

import "time"

// SessionRecord is the in-memory representation of one session.
//
// Single-writer rule: after creation, only the lifecycle controller that owns
// the session mutates the record. Readers must go through Snapshot copies.
type SessionRecord struct {
	ID    SessionID
	State SessionState

	// PendingCode holds the last rendered pairing code as a data URL.
	// Set only while State == StateAwaitingPairing; each new code from the
	// connector supersedes the previous one.
	PendingCode string

	// LastError describes the most recent failure, if any.
	LastError string

	// Attempts counts consecutive reconnect attempts since the last
	// successful open.
	Attempts int

	CreatedAtUnix int64
	UpdatedAtUnix int64
}

// NewSessionRecord initializes a session record with canonical defaults.
func NewSessionRecord(id SessionID, now time.Time) *SessionRecord {
	return &SessionRecord{
		ID:            id,
		State:         StateAwaitingPairing,
		CreatedAtUnix: now.Unix(),
		UpdatedAtUnix: now.Unix(),
	}
}

// Snapshot is a read-only copy of a record handed to the API layer.
type Snapshot struct {
	ID        SessionID
	State     SessionState
	HasCode   bool
	CodeURL   string
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot copies the observable parts of the record.
func (r *SessionRecord) Snapshot() Snapshot {
	return Snapshot{
		ID:        r.ID,
		State:     r.State,
		HasCode:   r.PendingCode != "",
		CodeURL:   r.PendingCode,
		LastError: r.LastError,
		CreatedAt: time.Unix(r.CreatedAtUnix, 0).UTC(),
		UpdatedAt: time.Unix(r.UpdatedAtUnix, 0).UTC(),
	}
}
