// SPDX-License-Identifier: MIT

package lifecycle

import "github.com/ManuGH/sessiond/internal/domain/session/model"

// ClosePolicy decides what a connector close means for the session.
type ClosePolicy struct {
	// Terminal closes the session for good; non-terminal closes park it in
	// StateDisconnected and let the controller schedule a reconnect.
	Terminal bool

	// EraseCreds removes the persisted credential blob. Only meaningful for
	// terminal closes: a logged-out session's credentials are invalid, but a
	// session that merely exhausted its retries keeps them for a later
	// explicit re-create.
	EraseCreds bool
}

// closePolicies enumerates every close reason explicitly. New reasons get a
// row here, not a boolean special case at the call site.
var closePolicies = map[model.CloseReason]ClosePolicy{
	model.ReasonLoggedOut:   {Terminal: true, EraseCreds: true},
	model.ReasonReplaced:    {Terminal: true, EraseCreds: true},
	model.ReasonNetwork:     {Terminal: false},
	model.ReasonStreamError: {Terminal: false},
	model.ReasonUnknown:     {Terminal: false},
}

// PolicyFor returns the close policy for a reason. Unlisted reasons are
// treated as transient, matching the conservative default for ReasonUnknown.
func PolicyFor(reason model.CloseReason) ClosePolicy {
	if p, ok := closePolicies[reason]; ok {
		return p
	}
	return ClosePolicy{Terminal: false}
}
