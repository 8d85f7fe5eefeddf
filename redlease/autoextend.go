package redlease

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// UnlimitedExtensions lifts the cap on the number of lease extensions.
const UnlimitedExtensions = -1

// AutoExtendOptions tunes a single RunAutoExtended call.
type AutoExtendOptions struct {
	// MaxExtensions caps how many times the lease may be extended.
	// UnlimitedExtensions removes the cap; zero disables extension
	// entirely, letting the lease lapse if fn outruns the TTL.
	MaxExtensions int

	// Threshold is the remaining validity below which the renewal loop
	// extends the lease. Zero means the client's configured threshold.
	Threshold time.Duration
}

// RunAutoExtended acquires the lease on resource for ttl and runs fn
// under it while a renewal loop keeps the lease alive for as long as fn
// needs, subject to the extension budget. The loop wakes shortly before
// the lease expires rather than polling on a fixed period. Extension
// failures surface only if they happen while fn is still running; once
// fn finishes the loop stands down cooperatively on its next wake. The
// lease is released on every exit path. A nil opts means an unlimited
// budget with the client's configured threshold.
func (c *Client) RunAutoExtended(ctx context.Context, resource string, ttl time.Duration, fn func(ctx context.Context) error, opts *AutoExtendOptions) error {
	maxExtensions := UnlimitedExtensions
	threshold := c.opts.ExtendThreshold
	if opts != nil {
		maxExtensions = opts.MaxExtensions
		if maxExtensions < 0 {
			maxExtensions = UnlimitedExtensions
		}
		if opts.Threshold > 0 {
			threshold = opts.Threshold
		}
	}

	lease, err := c.Acquire(ctx, resource, ttl)
	if err != nil {
		return err
	}
	defer c.Release(context.Background(), lease)

	released := atomic.NewBool(false)
	done := make(chan error, 1)
	go func() {
		err := fn(ctx)
		// Order matters: the flag must be set before the result is
		// published so a pending renewal tick cannot outrace it.
		released.Store(true)
		done <- err
	}()

	renewErr := make(chan error, 1)
	if maxExtensions != 0 {
		go c.renewLoop(ctx, lease, ttl, threshold, maxExtensions, released, renewErr)
	}

	select {
	case err := <-done:
		return err
	case err := <-renewErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// renewLoop is the self-rescheduling renewal timer: each tick first
// checks the released flag, extends the lease if its remaining validity
// dropped below threshold, then re-arms for the next wake near expiry.
// One dangling tick may fire after the protected operation finished; it
// exits silently.
func (c *Client) renewLoop(ctx context.Context, lease *Lease, ttl, threshold time.Duration, maxExtensions int, released *atomic.Bool, renewErr chan<- error) {
	extensions := 0
	timer := time.NewTimer(nextWake(lease, threshold))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
		if released.Load() {
			return
		}
		if lease.Until() < threshold {
			if maxExtensions != UnlimitedExtensions && extensions >= maxExtensions {
				renewErr <- fmt.Errorf("%w after %d extensions of %q", ErrExtendBudgetExceeded, extensions, lease.Resource())
				return
			}
			if !c.Extend(ctx, lease, ttl) {
				renewErr <- fmt.Errorf("%w: %q", ErrExtendFailed, lease.Resource())
				return
			}
			extensions++
		}
		timer.Reset(nextWake(lease, threshold))
	}
}

func nextWake(lease *Lease, threshold time.Duration) time.Duration {
	wake := lease.Until() - threshold
	if wake < 0 {
		wake = 0
	}
	return wake
}
