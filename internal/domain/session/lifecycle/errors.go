// SPDX-License-Identifier: MIT

package lifecycle

import "errors"

var (
	ErrConflict          = errors.New("session already active")
	ErrNotFound          = errors.New("session not found")
	ErrTimeout           = errors.New("operation timed out")
	ErrConnectorFailure  = errors.New("connector failure")
	ErrPersistence       = errors.New("credential persistence failure")
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
	ErrShuttingDown      = errors.New("registry is shutting down")
)
