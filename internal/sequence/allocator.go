// Package sequence issues scope-keyed, strictly increasing integers and
// formats them into the human-facing codes used across the catalog and billing.
//
// Every Allocator increments atomically in its backing store. None of them
// read the current value and write it back, and none of them retry; callers
// that want to survive a transient outage use NextWithBackoff.
package sequence

import (
	"context"
	"errors"
	"sync"
)

// ErrAllocationUnavailable is returned when the counter store cannot be reached.
// It is the only allocation error worth retrying.
var ErrAllocationUnavailable = errors.New("sequence allocation unavailable")

// ErrInvalidScope is returned for an empty scope key.
var ErrInvalidScope = errors.New("sequence scope key is required")

// Allocator hands out the next value for a scope, starting at 1.
type Allocator interface {
	Next(ctx context.Context, scopeKey string) (int64, error)
}

// MemoryAllocator keeps counters in process memory behind a single mutex.
// Values do not survive a restart; use it for tests and single-node development.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{counters: make(map[string]int64)}
}

func (a *MemoryAllocator) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, ErrInvalidScope
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[scopeKey]++
	return a.counters[scopeKey], nil
}

// Peek returns the last value issued for scopeKey without allocating.
func (a *MemoryAllocator) Peek(scopeKey string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters[scopeKey]
}
