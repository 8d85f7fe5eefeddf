// Package redlease implements a lease-based distributed lock coordinated
// through a single key-value store endpoint. Ownership is proven by an
// opaque token and bounded by a TTL rather than an explicit unlock
// acknowledgement, so a crashed holder can never wedge a resource.
package redlease

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/git-hulk/go-redlease/internal"
	"github.com/git-hulk/go-redlease/redlease/store"
)

const (
	DefaultRetryCount      = 10
	DefaultRetryDelay      = 200 * time.Millisecond
	DefaultRetryJitter     = 200 * time.Millisecond
	DefaultDriftFactor     = 0.01
	DefaultExtendThreshold = 500 * time.Millisecond

	// NoRetries configures Acquire to make exactly one attempt.
	NoRetries = -1

	// driftConstant is the fixed slack subtracted from every locally
	// tracked expiry on top of the proportional drift compensation.
	driftConstant = 2 * time.Millisecond
)

// Options configures a Client. The zero value of every field means its
// default; use NoRetries to disable retries on an otherwise defaulted
// Options value.
type Options struct {
	// RetryCount is the number of retries after the first acquisition
	// attempt.
	RetryCount int

	// RetryDelay is the base sleep between acquisition attempts.
	RetryDelay time.Duration

	// RetryJitter is the upper bound of the random amount added to every
	// retry sleep.
	RetryJitter time.Duration

	// DriftFactor is the fraction of the TTL subtracted from the locally
	// tracked expiry to compensate for round-trip time and clock skew.
	DriftFactor float64

	// ExtendThreshold is the remaining validity below which the renewal
	// loop of RunAutoExtended extends the lease.
	ExtendThreshold time.Duration

	// OnError observes transport errors that the engine swallows. It is
	// observational only and must not block. Defaults to the package
	// logger.
	OnError func(err error)
}

func (o *Options) normalize() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	switch {
	case opts.RetryCount == 0:
		opts.RetryCount = DefaultRetryCount
	case opts.RetryCount < 0:
		opts.RetryCount = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.RetryJitter <= 0 {
		opts.RetryJitter = DefaultRetryJitter
	}
	if opts.DriftFactor <= 0 {
		opts.DriftFactor = DefaultDriftFactor
	}
	if opts.ExtendThreshold <= 0 {
		opts.ExtendThreshold = DefaultExtendThreshold
	}
	return opts
}

// Client is the lease lock engine. It is safe for concurrent use.
type Client struct {
	store store.Store
	opts  Options
}

// New creates a Client on top of the given store. A nil opts takes all
// defaults.
func New(s store.Store, opts *Options) *Client {
	return &Client{
		store: s,
		opts:  opts.normalize(),
	}
}

// Acquire attempts to take the lease on resource for ttl, retrying a
// contended resource with a jittered delay until the attempt budget is
// exhausted, then returns ErrNotObtained. Transport errors are reported
// to the error observer and consume an attempt like contention does.
func (c *Client) Acquire(ctx context.Context, resource string, ttl time.Duration) (*Lease, error) {
	token := newToken()
	for attempt := 0; ; attempt++ {
		AcquireAttempts.Inc()
		start := time.Now()
		ok, err := c.store.TrySet(ctx, resource, token, ttl)
		switch {
		case err != nil:
			c.observe(fmt.Errorf("acquire %q: %w", resource, err))
		case ok:
			Acquired.Inc()
			return newLease(resource, token, c.expiryFrom(start, ttl)), nil
		default:
			AcquireContended.Inc()
		}
		if attempt >= c.opts.RetryCount {
			return nil, ErrNotObtained
		}
		select {
		case <-time.After(c.retryInterval()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release relinquishes the lease. It returns false when the lease is no
// longer held, because it already expired or because another acquirer has
// since taken the key. Transport errors degrade to false and are reported
// to the error observer.
func (c *Client) Release(ctx context.Context, lease *Lease) bool {
	ok, err := c.store.CompareDelete(ctx, lease.resource, lease.token)
	if err != nil {
		c.observe(fmt.Errorf("release %q: %w", lease.resource, err))
		return false
	}
	if ok {
		Released.Inc()
	}
	return ok
}

// Extend prolongs the lease by ttl from now. On success the locally
// tracked expiry is advanced; on failure it is left untouched, so the
// holder never believes the lease outlives what the store granted.
func (c *Client) Extend(ctx context.Context, lease *Lease, ttl time.Duration) bool {
	start := time.Now()
	ok, err := c.store.CompareExpire(ctx, lease.resource, lease.token, ttl)
	if err != nil {
		c.observe(fmt.Errorf("extend %q: %w", lease.resource, err))
		ExtensionFailures.Inc()
		return false
	}
	if !ok {
		ExtensionFailures.Inc()
		return false
	}
	lease.expiresAt.Store(c.expiryFrom(start, ttl))
	Extensions.Inc()
	return true
}

// expiryFrom computes the locally tracked expiry for a ttl granted by the
// store at start: the proportional drift compensation plus a fixed slack
// are subtracted so the local view lapses before the store's.
func (c *Client) expiryFrom(start time.Time, ttl time.Duration) time.Time {
	drift := time.Duration(float64(ttl.Milliseconds())*c.opts.DriftFactor) * time.Millisecond
	return start.Add(ttl - drift - driftConstant)
}

func (c *Client) retryInterval() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(c.opts.RetryJitter)))
	return c.opts.RetryDelay + jitter
}

func (c *Client) observe(err error) {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
		return
	}
	internal.GetLogger().Printf("%v", err)
}
