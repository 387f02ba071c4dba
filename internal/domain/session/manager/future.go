// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"sync"
	"time"
)

// CreateStatus is the outcome of awaiting a session's first significant event.
type CreateStatus string

const (
	CreateQR            CreateStatus = "qr"
	CreateAuthenticated CreateStatus = "authenticated"
	CreatePending       CreateStatus = "pending"
	CreateFailed        CreateStatus = "failed"
)

// CreateResult is handed to the API layer to answer the create request.
type CreateResult struct {
	Status  CreateStatus
	CodeURL string
	Err     error
}

// createFuture resolves exactly once with the first significant event of a
// new session. Multiple connector events may race to answer the create
// request; the once guard makes the first one win and the rest no-ops.
type createFuture struct {
	once sync.Once
	ch   chan CreateResult
}

func newCreateFuture() *createFuture {
	return &createFuture{ch: make(chan CreateResult, 1)}
}

func (f *createFuture) resolve(res CreateResult) {
	f.once.Do(func() {
		f.ch <- res
	})
}

// await blocks until the future resolves, the timeout expires or ctx is
// cancelled. Expiry resolves to CreatePending; it does not fail the session.
func (f *createFuture) await(ctx context.Context, timeout time.Duration) CreateResult {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-f.ch:
		return res
	case <-timer.C:
		return CreateResult{Status: CreatePending}
	case <-ctx.Done():
		return CreateResult{Status: CreatePending}
	}
}
