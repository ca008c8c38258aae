// Package pricing holds the pure combo and billing arithmetic: check digits,
// slot matching, discounts and bill aggregation. Nothing here does I/O or
// keeps state, so every function is safe to call from any goroutine.
package pricing

import "errors"

// Engine error kinds. Callers branch on them with errors.Is and decide whether
// the failure aborts the transaction or only excludes an item.
var (
	ErrNoSlotMatched         = errors.New("no price slot matched")
	ErrHighValueRejected     = errors.New("item price too high for matched slot")
	ErrQuantityMismatch      = errors.New("variant quantities do not sum to bundle total")
	ErrInvalidDiscountPolicy = errors.New("invalid discount policy")
	ErrComboInactive         = errors.New("combo is inactive or paused")
	ErrComboExpired          = errors.New("combo is outside its validity window")
	ErrComboUsageExceeded    = errors.New("combo usage limit reached")
	ErrComboRulesViolated    = errors.New("cart does not satisfy combo rules")
	ErrInvalidBarcode        = errors.New("invalid barcode input")
)
