package sequence

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// backoffBase is the first wait between attempts; later waits double it.
var backoffBase = time.Second

// NextWithBackoff calls alloc.Next up to maxAttempts times, waiting 1s, 2s, 4s…
// between attempts. Only ErrAllocationUnavailable is retried; any other error
// and context cancellation return immediately.
func NextWithBackoff(ctx context.Context, alloc Allocator, scopeKey string, maxAttempts int) (int64, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := backoffBase * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(wait):
			}
		}
		n, err := alloc.Next(ctx, scopeKey)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ErrAllocationUnavailable) {
			return 0, err
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("scope_key", scopeKey).
			Int("attempt", i+1).
			Msg("sequence: allocation unavailable, backing off")
	}
	return 0, lastErr
}

// Retrying adapts NextWithBackoff to the Allocator interface so a caller can
// hand a retry-aware allocator to components that allocate on its behalf.
func Retrying(alloc Allocator, maxAttempts int) Allocator {
	return retrying{alloc: alloc, maxAttempts: maxAttempts}
}

type retrying struct {
	alloc       Allocator
	maxAttempts int
}

func (r retrying) Next(ctx context.Context, scopeKey string) (int64, error) {
	return NextWithBackoff(ctx, r.alloc, scopeKey, r.maxAttempts)
}
