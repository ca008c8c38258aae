package pricing

import (
	"fmt"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// highValueBuffer is the tolerance above a slot's max price before the
// high-value guard considers an item misplaced.
var highValueBuffer = decimal.NewFromFloat(0.20)

// MatchSlot returns the active slot whose band contains price. The highest
// priority wins; equal priorities keep declaration order.
func MatchSlot(price decimal.Decimal, slots []model.PriceSlot) (*model.PriceSlot, error) {
	best := -1
	for i := range slots {
		s := slots[i]
		if !s.Active || !s.Contains(price) {
			continue
		}
		if best < 0 || s.Priority > slots[best].Priority {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: price %s", ErrNoSlotMatched, price.StringFixed(2))
	}
	matched := slots[best]
	return &matched, nil
}

// ValidateAssignment applies the high-value guard. An assignment is rejected
// only when price exceeds the slot max by more than 20% and another active
// slot starts above this slot's max.
func ValidateAssignment(price decimal.Decimal, slot model.PriceSlot, allSlots []model.PriceSlot, preventHighValue bool) bool {
	if !preventHighValue {
		return true
	}
	if !price.GreaterThan(bufferLimit(slot)) {
		return true
	}
	for _, other := range allSlots {
		if other.Active && other.Name != slot.Name && other.MinPrice.GreaterThan(slot.MaxPrice) {
			return false
		}
	}
	return true
}

// AssignSlot is auto-assignment: the band match, then the high-value guard.
// A price outside every active band is ErrNoSlotMatched.
func AssignSlot(price decimal.Decimal, slots []model.PriceSlot, preventHighValue bool) (*model.PriceSlot, error) {
	slot, err := MatchSlot(price, slots)
	if err != nil {
		return nil, err
	}
	if !ValidateAssignment(price, *slot, slots, preventHighValue) {
		return nil, fmt.Errorf("%w: price %s in slot %q", ErrHighValueRejected, price.StringFixed(2), slot.Name)
	}
	return slot, nil
}

// AssignToSlot places price in the named slot, as when staff pick the slot by
// hand. The price may sit above the slot's max by at most the 20% buffer.
func AssignToSlot(price decimal.Decimal, slotName string, slots []model.PriceSlot, preventHighValue bool) (*model.PriceSlot, error) {
	for i := range slots {
		s := slots[i]
		if s.Name != slotName {
			continue
		}
		if !s.Active || price.LessThan(s.MinPrice) {
			return nil, fmt.Errorf("%w: price %s in slot %q", ErrNoSlotMatched, price.StringFixed(2), slotName)
		}
		if !ValidateAssignment(price, s, slots, preventHighValue) {
			return nil, fmt.Errorf("%w: price %s in slot %q", ErrHighValueRejected, price.StringFixed(2), slotName)
		}
		if price.GreaterThan(bufferLimit(s)) {
			return nil, fmt.Errorf("%w: price %s above slot %q", ErrNoSlotMatched, price.StringFixed(2), slotName)
		}
		return &s, nil
	}
	return nil, fmt.Errorf("%w: unknown slot %q", ErrNoSlotMatched, slotName)
}

func bufferLimit(s model.PriceSlot) decimal.Decimal {
	return s.MaxPrice.Add(s.MaxPrice.Mul(highValueBuffer))
}
