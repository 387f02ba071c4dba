// SPDX-License-Identifier: MIT

package lifecycle

import "github.com/ManuGH/sessiond/internal/domain/session/model"

// Transition describes one applied state change.
type Transition struct {
	From   model.SessionState
	To     model.SessionState
	Event  EventKind
	Reason model.CloseReason
}

type transitionKey struct {
	from model.SessionState
	kind EventKind
}

// transitions is the single source of truth for legal non-close transitions.
// EvClose is resolved through the close policy table instead (see Dispatch).
var transitions = map[transitionKey]model.SessionState{
	{model.StateAwaitingPairing, EvPairingCode}:     model.StateAwaitingPairing,
	{model.StateAwaitingPairing, EvOpen}:            model.StateAuthenticated,
	{model.StateAwaitingPairing, EvLogoutRequested}: model.StateClosed,

	// EvOpen while authenticated is a credential refresh from the connector.
	{model.StateAuthenticated, EvOpen}:            model.StateAuthenticated,
	{model.StateAuthenticated, EvLogoutRequested}: model.StateClosed,

	{model.StateDisconnected, EvReconnect}:        model.StateReconnecting,
	{model.StateDisconnected, EvLogoutRequested}:  model.StateClosed,
	{model.StateDisconnected, EvRetriesExhausted}: model.StateClosed,

	{model.StateReconnecting, EvOpen}: model.StateAuthenticated,
	// A resume attempt may be rejected and demand a fresh pairing.
	{model.StateReconnecting, EvPairingCode}:      model.StateAwaitingPairing,
	{model.StateReconnecting, EvLogoutRequested}:  model.StateClosed,
	{model.StateReconnecting, EvRetriesExhausted}: model.StateClosed,
}

// TransitionFor resolves the target state for a non-close event.
func TransitionFor(from model.SessionState, kind EventKind) (model.SessionState, bool) {
	to, ok := transitions[transitionKey{from, kind}]
	return to, ok
}
