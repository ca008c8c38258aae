package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MatchedItem is a cart line placed in a combo slot.
type MatchedItem struct {
	ProductRef string
	SlotName   string
	UnitPrice  decimal.Decimal
	Quantity   int
	// CartIndex is the position of the source item in the evaluated cart.
	CartIndex int
}

// Value returns UnitPrice × Quantity.
func (m MatchedItem) Value() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

// ComputeDiscount prices combo over originalAmount. items are only consulted by
// buyXGetY, which needs unit prices to find the free units. The discount is
// rounded to two places and always lies in [0, originalAmount].
func ComputeDiscount(originalAmount decimal.Decimal, combo *model.Combo, items []MatchedItem) (discount, final decimal.Decimal, err error) {
	if combo == nil {
		return decimal.Zero, decimal.Zero, errors.New("combo is required")
	}
	if originalAmount.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("original amount %s must not be negative", originalAmount)
	}
	if combo.DiscountVal.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: negative discount value", ErrInvalidDiscountPolicy)
	}

	switch combo.DiscountType {
	case model.DiscountPercentage:
		if combo.DiscountVal.GreaterThan(hundred) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: percentage above 100", ErrInvalidDiscountPolicy)
		}
		discount = originalAmount.Mul(combo.DiscountVal).Div(hundred)
	case model.DiscountFixed:
		discount = decimal.Min(combo.DiscountVal, originalAmount)
	case model.DiscountBuyXGetY:
		if combo.BuyXGetY == nil || !combo.BuyXGetY.Valid() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: buyXGetY needs buy and free quantities", ErrInvalidDiscountPolicy)
		}
		discount = freeUnitsValue(*combo.BuyXGetY, items)
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: unknown type %q", ErrInvalidDiscountPolicy, combo.DiscountType)
	}

	if combo.MaxDiscount != nil && discount.GreaterThan(*combo.MaxDiscount) {
		discount = *combo.MaxDiscount
	}
	discount = clamp(discount.Round(2), decimal.Zero, originalAmount)
	return discount, originalAmount.Sub(discount), nil
}

// freeUnitsValue gives away the cheapest Y units for every complete group of
// X+Y units matched.
func freeUnitsValue(p model.BuyXGetYPolicy, items []MatchedItem) decimal.Decimal {
	var units []decimal.Decimal
	for _, it := range items {
		for q := 0; q < it.Quantity; q++ {
			units = append(units, it.UnitPrice)
		}
	}
	free := (len(units) / (p.BuyQuantity + p.FreeQuantity)) * p.FreeQuantity
	if free == 0 {
		return decimal.Zero
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].LessThan(units[j]) })

	total := decimal.Zero
	for _, u := range units[:free] {
		total = total.Add(u)
	}
	return total
}

// SlotBreakdown groups matched items by slot in first-seen order.
func SlotBreakdown(items []MatchedItem) []model.SlotBreakdownEntry {
	var out []model.SlotBreakdownEntry
	idx := make(map[string]int)
	for _, it := range items {
		i, ok := idx[it.SlotName]
		if !ok {
			i = len(out)
			idx[it.SlotName] = i
			out = append(out, model.SlotBreakdownEntry{SlotName: it.SlotName, TotalValue: decimal.Zero})
		}
		out[i].ItemCount += it.Quantity
		out[i].TotalValue = out[i].TotalValue.Add(it.Value())
	}
	return out
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
