// SPDX-License-Identifier: MIT

// Package model holds the dependency-free domain types of the session
// lifecycle. It is decoupled from the HTTP DTOs to maintain clean layering.
package model

// SessionState is the authoritative lifecycle state of one session.
type SessionState string

const (
	// StateAwaitingPairing covers both fresh pairing (a QR code is expected)
	// and a silent resume attempt that has not yet confirmed.
	StateAwaitingPairing SessionState = "awaiting_pairing"
	StateAuthenticated   SessionState = "authenticated"
	StateDisconnected    SessionState = "disconnected"
	StateReconnecting    SessionState = "reconnecting"
	StateClosed          SessionState = "closed"
)

// IsTerminal reports whether no further transitions are possible.
func (s SessionState) IsTerminal() bool {
	return s == StateClosed
}

// IsActive reports whether the session still occupies its ID in the registry.
func (s SessionState) IsActive() bool {
	return !s.IsTerminal()
}

// CloseReason classifies why a connector reported a close.
type CloseReason string

const (
	ReasonLoggedOut   CloseReason = "logged_out"   // credentials invalidated by the user
	ReasonReplaced    CloseReason = "replaced"     // another device took over the session
	ReasonNetwork     CloseReason = "network"      // transient transport failure
	ReasonStreamError CloseReason = "stream_error" // protocol-level hiccup, retryable
	ReasonUnknown     CloseReason = "unknown"
)
