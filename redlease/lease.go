package redlease

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Lease records ownership of a locked resource: the resource key, the
// opaque token proving ownership, and the locally tracked expiry. The
// expiry is pessimistic, it is shortened by the drift compensation and
// may undershoot the store's actual TTL, never overshoot it.
type Lease struct {
	resource string
	token    string

	// expiresAt is written by a successful Extend and read concurrently
	// by the renewal loop and callers.
	expiresAt *atomic.Time
}

func newLease(resource, token string, expiresAt time.Time) *Lease {
	return &Lease{
		resource:  resource,
		token:     token,
		expiresAt: atomic.NewTime(expiresAt),
	}
}

// newToken combines a random component with a timestamp component so two
// acquirers can never collide on the same proof of ownership.
func newToken() string {
	return fmt.Sprintf("%s-%x", uuid.NewString(), time.Now().UnixNano())
}

// Resource returns the key of the protected resource.
func (l *Lease) Resource() string {
	return l.resource
}

// Token returns the opaque value proving ownership of the lease.
func (l *Lease) Token() string {
	return l.token
}

// ExpiresAt returns the locally tracked expiry of the lease.
func (l *Lease) ExpiresAt() time.Time {
	return l.expiresAt.Load()
}

// Until returns the remaining validity of the lease. It is negative once
// the lease has lapsed.
func (l *Lease) Until() time.Duration {
	return time.Until(l.expiresAt.Load())
}
