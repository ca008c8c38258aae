package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"
)

// Guarded puts a circuit breaker in front of another Allocator. While the
// breaker is open, Next fails fast with ErrAllocationUnavailable instead of
// waiting on a store that is known to be down.
type Guarded struct {
	inner Allocator
	cb    *infra.CircuitBreaker
}

func NewGuarded(inner Allocator, cb *infra.CircuitBreaker) *Guarded {
	return &Guarded{inner: inner, cb: cb}
}

// Breaker exposes the breaker for health reporting.
func (g *Guarded) Breaker() *infra.CircuitBreaker { return g.cb }

func (g *Guarded) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, ErrInvalidScope
	}

	var (
		value    int64
		otherErr error
	)
	err := g.cb.Execute(func() error {
		v, err := g.inner.Next(ctx, scopeKey)
		switch {
		case err == nil:
			value = v
			return nil
		case errors.Is(err, ErrAllocationUnavailable):
			return err
		default:
			// Caller errors (cancelled ctx, bad scope) say nothing about store health.
			otherErr = err
			return nil
		}
	})

	family := scopeFamily(scopeKey)
	switch {
	case errors.Is(err, infra.ErrCircuitOpen):
		infra.SequenceAllocations.WithLabelValues(family, "circuit_open").Inc()
		return 0, fmt.Errorf("%w: %v", ErrAllocationUnavailable, err)
	case err != nil:
		infra.SequenceAllocations.WithLabelValues(family, "unavailable").Inc()
		return 0, err
	case otherErr != nil:
		infra.SequenceAllocations.WithLabelValues(family, "error").Inc()
		return 0, otherErr
	}
	infra.SequenceAllocations.WithLabelValues(family, "ok").Inc()
	return value, nil
}

// scopeFamily trims a scope key to its leading segment ("BILL/240615" -> "BILL")
// so metric label cardinality stays bounded.
func scopeFamily(scopeKey string) string {
	if i := strings.IndexByte(scopeKey, '/'); i > 0 {
		return scopeKey[:i]
	}
	return scopeKey
}
