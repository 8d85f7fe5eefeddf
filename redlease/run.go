package redlease

import (
	"context"
	"time"
)

// RunLocked acquires the lease on resource for ttl and runs fn under it,
// racing fn against a deadline equal to the same ttl. If the deadline
// fires first a TimeoutError carrying the budget is returned; fn is not
// cancelled and its eventual result is discarded, the store's TTL being
// the true backstop once the deadline has passed. The lease is released
// on every exit path. Acquisition failure returns ErrNotObtained before
// fn is invoked.
func (c *Client) RunLocked(ctx context.Context, resource string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, resource, ttl)
	if err != nil {
		return err
	}
	defer c.Release(context.Background(), lease)

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	timer := time.NewTimer(ttl)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return &TimeoutError{Timeout: ttl}
	case <-ctx.Done():
		return ctx.Err()
	}
}
