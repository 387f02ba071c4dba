// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFutureFirstResolutionWins(t *testing.T) {
	f := newCreateFuture()
	f.resolve(CreateResult{Status: CreateQR, CodeURL: "first"})
	f.resolve(CreateResult{Status: CreateAuthenticated})

	res := f.await(context.Background(), time.Second)
	assert.Equal(t, CreateQR, res.Status)
	assert.Equal(t, "first", res.CodeURL)
}

func TestFutureTimeoutYieldsPending(t *testing.T) {
	f := newCreateFuture()
	res := f.await(context.Background(), 20*time.Millisecond)
	assert.Equal(t, CreatePending, res.Status)
}

func TestFutureCancelledContextYieldsPending(t *testing.T) {
	f := newCreateFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.await(ctx, time.Second)
	assert.Equal(t, CreatePending, res.Status)
}

func TestFutureResolveAfterTimeoutIsHarmless(t *testing.T) {
	f := newCreateFuture()
	_ = f.await(context.Background(), 10*time.Millisecond)
	f.resolve(CreateResult{Status: CreateAuthenticated}) // must not panic or block
}
