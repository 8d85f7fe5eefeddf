package redlease

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/git-hulk/go-redlease/redlease/store"
)

func TestRunLockedResultPropagation(t *testing.T) {
	client := New(store.NewMemory(), fastOptions())
	ctx := context.Background()

	var ran atomic.Bool
	err := client.RunLocked(ctx, "resource", time.Minute, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran.Load())

	cause := errors.New("boom")
	err = client.RunLocked(ctx, "resource", time.Minute, func(context.Context) error {
		return cause
	})
	require.ErrorIs(t, err, cause)
}

func TestRunLockedTimeout(t *testing.T) {
	s := store.NewMemory()
	client := New(s, fastOptions())
	ctx := context.Background()

	start := time.Now()
	err := client.RunLocked(ctx, "resource", 100*time.Millisecond, func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, 100*time.Millisecond, timeoutErr.Timeout)
	require.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	require.Less(t, elapsed, 300*time.Millisecond)

	// The lease is released on the timeout path as well.
	_, exists, err := s.Get(ctx, "resource")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunLockedReleasesOnEveryExit(t *testing.T) {
	s := store.NewMemory()
	client := New(s, fastOptions())
	ctx := context.Background()

	err := client.RunLocked(ctx, "resource", time.Minute, func(context.Context) error {
		return errors.New("op failed")
	})
	require.Error(t, err)

	_, exists, err := s.Get(ctx, "resource")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunLockedNotObtained(t *testing.T) {
	client := New(store.NewMemory(), fastOptions())
	ctx := context.Background()

	lease, err := client.Acquire(ctx, "resource", time.Minute)
	require.NoError(t, err)
	defer client.Release(ctx, lease)

	var ran atomic.Bool
	err = client.RunLocked(ctx, "resource", time.Minute, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	require.ErrorIs(t, err, ErrNotObtained)
	require.False(t, ran.Load())
}

func TestRunLockedContextCancelled(t *testing.T) {
	s := store.NewMemory()
	client := New(s, fastOptions())

	cctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := client.RunLocked(cctx, "resource", time.Minute, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)

	_, exists, err := s.Get(context.Background(), "resource")
	require.NoError(t, err)
	require.False(t, exists)
}
