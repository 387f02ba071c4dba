// SPDX-License-Identifier: MIT

package lifecycle

import "github.com/ManuGH/sessiond/internal/domain/session/model"

// EventKind is a domain event in the session lifecycle.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvPairingCode
	EvOpen
	EvClose
	EvLogoutRequested
	EvReconnect
	EvRetriesExhausted
)

func (k EventKind) String() string {
	switch k {
	case EvPairingCode:
		return "pairing_code"
	case EvOpen:
		return "open"
	case EvClose:
		return "close"
	case EvLogoutRequested:
		return "logout_requested"
	case EvReconnect:
		return "reconnect"
	case EvRetriesExhausted:
		return "retries_exhausted"
	default:
		return "unknown"
	}
}

// Event carries optional domain metadata for a transition.
type Event struct {
	Kind EventKind

	// Code is the raw pairing code for EvPairingCode.
	Code string

	// Reason classifies EvClose.
	Reason model.CloseReason

	// Creds carries the credential blob for EvOpen.
	Creds []byte

	// Err is the underlying cause for failure events, if any.
	Err error
}
