package repository

import (
	"context"
	"fmt"

	"github.com/Team-Techentia/veedra-sub001/internal/sequence"

	"gorm.io/gorm"
)

// SequenceRepository is the Postgres-backed sequence.Allocator.
type SequenceRepository interface {
	sequence.Allocator
	Current(ctx context.Context, scopeKey string) (int64, error)
}

type sequenceRepo struct{ db *gorm.DB }

func NewSequenceRepository(db *gorm.DB) SequenceRepository { return &sequenceRepo{db: db} }

// Next creates the counter row on first use and increments it otherwise, in
// one statement, so concurrent callers serialize on the row lock.
func (r *sequenceRepo) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, sequence.ErrInvalidScope
	}
	var value int64
	err := r.db.WithContext(ctx).Raw(`
INSERT INTO sequence_counters (scope_key, last_value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (scope_key)
DO UPDATE SET last_value = sequence_counters.last_value + 1, updated_at = NOW()
RETURNING last_value`, scopeKey).Scan(&value).Error
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: postgres counter %s: %v", sequence.ErrAllocationUnavailable, scopeKey, err)
	}
	return value, nil
}

// Current returns the last issued value, 0 when the scope was never used.
func (r *sequenceRepo) Current(ctx context.Context, scopeKey string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(last_value), 0) FROM sequence_counters WHERE scope_key = ?", scopeKey).
		Scan(&value).Error
	return value, err
}
