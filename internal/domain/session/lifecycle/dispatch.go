// SPDX-License-Identifier: MIT

// Package lifecycle is the session state machine. It is the single authority
// resolving connector events into state transitions; neither the registry nor
// the API layer interprets raw events.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/ManuGH/sessiond/internal/domain/session/model"
)

// Dispatch resolves and applies the transition for ev against the tables.
// Illegal transitions leave the record untouched and return
// ErrIllegalTransition.
func Dispatch(rec *model.SessionRecord, ev Event, now time.Time) (Transition, error) {
	if rec.State.IsTerminal() {
		return Transition{}, fmt.Errorf("%w: %s on terminal state %s", ErrIllegalTransition, ev.Kind, rec.State)
	}

	if ev.Kind == EvClose {
		pol := PolicyFor(ev.Reason)
		to := model.StateDisconnected
		if pol.Terminal {
			to = model.StateClosed
		}
		tr := Transition{From: rec.State, To: to, Event: EvClose, Reason: ev.Reason}
		applyTransition(rec, tr, ev, now)
		return tr, nil
	}

	to, ok := TransitionFor(rec.State, ev.Kind)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s on state %s", ErrIllegalTransition, ev.Kind, rec.State)
	}

	tr := Transition{From: rec.State, To: to, Event: ev.Kind}
	applyTransition(rec, tr, ev, now)
	return tr, nil
}

// applyTransition mutates the session record according to the transition.
func applyTransition(rec *model.SessionRecord, tr Transition, ev Event, now time.Time) {
	rec.State = tr.To

	switch tr.Event {
	case EvPairingCode:
		// Rendering happens in the controller; the raw code is recorded so a
		// later render failure still leaves a consistent record.
		rec.PendingCode = ev.Code
	case EvOpen:
		rec.PendingCode = ""
		rec.LastError = ""
		rec.Attempts = 0
	case EvClose:
		rec.PendingCode = ""
		if ev.Err != nil {
			rec.LastError = ev.Err.Error()
		} else {
			rec.LastError = string(ev.Reason)
		}
	case EvReconnect:
		rec.Attempts++
	case EvRetriesExhausted:
		rec.PendingCode = ""
		rec.LastError = "reconnect retries exhausted"
	case EvLogoutRequested:
		rec.PendingCode = ""
	}

	rec.UpdatedAtUnix = now.Unix()
}
