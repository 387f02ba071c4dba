// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"fmt"
	"sync"
)

// joiner tracks controller goroutines and provides a bounded join on shutdown.
type joiner struct {
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func (j *joiner) Go(fn func()) bool {
	j.mu.Lock()
	if j.closing {
		j.mu.Unlock()
		return false
	}
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		fn()
	}()

	return true
}

func (j *joiner) CloseAndWait(ctx context.Context) error {
	j.mu.Lock()
	j.closing = true
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session controller drain timeout: %w", ctx.Err())
	}
}
