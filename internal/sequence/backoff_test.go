package sequence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyAllocator fails with ErrAllocationUnavailable for the first `failures` calls.
type flakyAllocator struct {
	failures int
	calls    int
	err      error
}

func (f *flakyAllocator) Next(_ context.Context, _ string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if f.calls <= f.failures {
		return 0, fmt.Errorf("%w: store down", ErrAllocationUnavailable)
	}
	return int64(f.calls), nil
}

var _ Allocator = (*flakyAllocator)(nil)

func fastBackoff(t *testing.T) {
	t.Helper()
	prev := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = prev })
}

func TestNextWithBackoff_RecoversAfterTransientFailures(t *testing.T) {
	fastBackoff(t)
	f := &flakyAllocator{failures: 2}

	n, err := NextWithBackoff(context.Background(), f, "BILL/240615", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3, f.calls)
}

func TestNextWithBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	fastBackoff(t)
	f := &flakyAllocator{failures: 10}

	_, err := NextWithBackoff(context.Background(), f, "BILL/240615", 3)
	assert.ErrorIs(t, err, ErrAllocationUnavailable)
	assert.Equal(t, 3, f.calls)
}

func TestNextWithBackoff_DoesNotRetryOtherErrors(t *testing.T) {
	fastBackoff(t)
	f := &flakyAllocator{err: errors.New("boom")}

	_, err := NextWithBackoff(context.Background(), f, "VEN", 5)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, f.calls)
}

func TestNextWithBackoff_HonoursCancellation(t *testing.T) {
	f := &flakyAllocator{failures: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NextWithBackoff(ctx, f, "VEN", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.calls, "first attempt runs, the wait is interrupted")
}

func TestGuarded_OpensAfterRepeatedUnavailability(t *testing.T) {
	f := &flakyAllocator{failures: 100}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	g := NewGuarded(f, cb)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Next(ctx, "BILL/240615")
		assert.ErrorIs(t, err, ErrAllocationUnavailable)
	}
	assert.Equal(t, infra.CBOpen, cb.State())

	_, err := g.Next(ctx, "BILL/240615")
	assert.ErrorIs(t, err, ErrAllocationUnavailable)
	assert.Equal(t, 2, f.calls, "open breaker must not reach the store")
}

func TestGuarded_CallerErrorsDoNotTripBreaker(t *testing.T) {
	f := &flakyAllocator{err: context.Canceled}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1})
	g := NewGuarded(f, cb)

	_, err := g.Next(context.Background(), "VEN")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestGuarded_PassesValuesThrough(t *testing.T) {
	g := NewGuarded(NewMemoryAllocator(), infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	n, err := g.Next(context.Background(), "VEN")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
