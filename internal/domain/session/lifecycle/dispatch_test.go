// SPDX-License-Identifier: MIT

package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sessiond/internal/domain/session/model"
)

func newRec(state model.SessionState) *model.SessionRecord {
	rec := model.NewSessionRecord("1555", time.Now())
	rec.State = state
	return rec
}

func TestDispatchPairingCodeSupersedes(t *testing.T) {
	rec := newRec(model.StateAwaitingPairing)

	_, err := Dispatch(rec, Event{Kind: EvPairingCode, Code: "url-1"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "url-1", rec.PendingCode)

	_, err = Dispatch(rec, Event{Kind: EvPairingCode, Code: "url-2"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "url-2", rec.PendingCode, "newer code must replace the older one")
	assert.Equal(t, model.StateAwaitingPairing, rec.State)
}

func TestDispatchOpenClearsPendingCode(t *testing.T) {
	rec := newRec(model.StateAwaitingPairing)
	rec.PendingCode = "url-1"
	rec.Attempts = 3

	tr, err := Dispatch(rec, Event{Kind: EvOpen}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.StateAuthenticated, tr.To)
	assert.Empty(t, rec.PendingCode)
	assert.Zero(t, rec.Attempts)
}

func TestDispatchCloseFollowsPolicy(t *testing.T) {
	cases := []struct {
		reason model.CloseReason
		want   model.SessionState
	}{
		{model.ReasonLoggedOut, model.StateClosed},
		{model.ReasonReplaced, model.StateClosed},
		{model.ReasonNetwork, model.StateDisconnected},
		{model.ReasonStreamError, model.StateDisconnected},
		{model.ReasonUnknown, model.StateDisconnected},
	}
	for _, tc := range cases {
		rec := newRec(model.StateAuthenticated)
		tr, err := Dispatch(rec, Event{Kind: EvClose, Reason: tc.reason}, time.Now())
		require.NoError(t, err, string(tc.reason))
		assert.Equal(t, tc.want, tr.To, string(tc.reason))
		assert.Equal(t, string(tc.reason), rec.LastError)
	}
}

func TestDispatchIllegalTransitions(t *testing.T) {
	rec := newRec(model.StateClosed)
	_, err := Dispatch(rec, Event{Kind: EvOpen}, time.Now())
	assert.ErrorIs(t, err, ErrIllegalTransition)

	rec = newRec(model.StateAwaitingPairing)
	before := *rec
	_, err = Dispatch(rec, Event{Kind: EvReconnect}, time.Now())
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, before.State, rec.State, "failed dispatch must not mutate the record")
}

func TestDispatchReconnectCycle(t *testing.T) {
	rec := newRec(model.StateAuthenticated)

	_, err := Dispatch(rec, Event{Kind: EvClose, Reason: model.ReasonNetwork}, time.Now())
	require.NoError(t, err)
	require.Equal(t, model.StateDisconnected, rec.State)

	_, err = Dispatch(rec, Event{Kind: EvReconnect}, time.Now())
	require.NoError(t, err)
	require.Equal(t, model.StateReconnecting, rec.State)
	assert.Equal(t, 1, rec.Attempts)

	_, err = Dispatch(rec, Event{Kind: EvOpen}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.StateAuthenticated, rec.State)
	assert.Zero(t, rec.Attempts)
}

func TestDispatchRetriesExhausted(t *testing.T) {
	rec := newRec(model.StateDisconnected)
	tr, err := Dispatch(rec, Event{Kind: EvRetriesExhausted}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.StateClosed, tr.To)
	assert.True(t, rec.State.IsTerminal())
}

func TestDispatchCloseRecordsCause(t *testing.T) {
	rec := newRec(model.StateAuthenticated)
	cause := errors.New("socket reset")
	_, err := Dispatch(rec, Event{Kind: EvClose, Reason: model.ReasonNetwork, Err: cause}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "socket reset", rec.LastError)
}

func TestPolicyTableTerminality(t *testing.T) {
	assert.True(t, PolicyFor(model.ReasonLoggedOut).Terminal)
	assert.True(t, PolicyFor(model.ReasonLoggedOut).EraseCreds)
	assert.True(t, PolicyFor(model.ReasonReplaced).Terminal)
	assert.False(t, PolicyFor(model.ReasonNetwork).Terminal)
	assert.False(t, PolicyFor("something_new").Terminal, "unknown reasons default to transient")
}
