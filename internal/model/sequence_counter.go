package model

import "time"

// SequenceCounter is the durable per-scope counter behind the Postgres allocator.
// Rows are created on first allocation and only ever incremented.
type SequenceCounter struct {
	ScopeKey  string `gorm:"primaryKey"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}
