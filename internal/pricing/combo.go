package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line offered to a combo. SlotName, when set, is a
// manual placement that bypasses auto-assignment.
type CartItem struct {
	ProductRef string
	UnitPrice  decimal.Decimal
	Quantity   int
	SlotName   string
}

// HighValuePolicy decides what a rejected high-value item does to the combo.
type HighValuePolicy int

const (
	// HighValueExclude drops the item and keeps evaluating.
	HighValueExclude HighValuePolicy = iota
	// HighValueBlock fails the whole combo.
	HighValueBlock
)

type EvaluateOptions struct {
	HighValue HighValuePolicy
}

// ExcludedItem records units left out of the combo and why.
type ExcludedItem struct {
	ProductRef string
	UnitPrice  decimal.Decimal
	Quantity   int
	Reason     error
}

// ComboEvaluation is the full outcome of applying one combo to a cart.
type ComboEvaluation struct {
	Applied  model.AppliedCombo
	Matched  []MatchedItem
	Excluded []ExcludedItem
}

// EvaluateCombo runs the combo pipeline: validity gate, slot assignment with
// the high-value guard, slot caps, cart rules, then discount.
func EvaluateCombo(combo *model.Combo, cart []CartItem, now time.Time, opts EvaluateOptions) (*ComboEvaluation, error) {
	if err := CheckValidity(combo, now); err != nil {
		return nil, err
	}

	eval := &ComboEvaluation{}
	cartValue := decimal.Zero
	slotUnits := make(map[string]int)

	for ci, item := range cart {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s has quantity %d", ErrComboRulesViolated, item.ProductRef, item.Quantity)
		}
		cartValue = cartValue.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))

		var (
			slot *model.PriceSlot
			err  error
		)
		if item.SlotName != "" {
			slot, err = AssignToSlot(item.UnitPrice, item.SlotName, combo.Slots, combo.PreventHighValueInLowSlot)
		} else {
			slot, err = AssignSlot(item.UnitPrice, combo.Slots, combo.PreventHighValueInLowSlot)
		}
		if err != nil {
			if errors.Is(err, ErrHighValueRejected) && opts.HighValue == HighValueBlock {
				return nil, err
			}
			eval.exclude(item, item.Quantity, err)
			continue
		}

		take := item.Quantity
		if slot.MaxItems > 0 {
			room := slot.MaxItems - slotUnits[slot.Name]
			if room < take {
				take = max(room, 0)
			}
		}
		if take < item.Quantity {
			eval.exclude(item, item.Quantity-take, fmt.Errorf("slot %q is full", slot.Name))
		}
		if take == 0 {
			continue
		}
		slotUnits[slot.Name] += take
		eval.Matched = append(eval.Matched, MatchedItem{
			ProductRef: item.ProductRef,
			SlotName:   slot.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   take,
			CartIndex:  ci,
		})
	}

	if err := checkRules(combo, eval.Matched, slotUnits, cartValue); err != nil {
		return nil, err
	}

	original := decimal.Zero
	for _, m := range eval.Matched {
		original = original.Add(m.Value())
	}
	discount, final, err := ComputeDiscount(original, combo, eval.Matched)
	if err != nil {
		return nil, err
	}

	eval.Applied = model.AppliedCombo{
		ComboRef:       combo.Code,
		OriginalAmount: original,
		DiscountAmount: discount,
		FinalAmount:    final,
		SavingsAmount:  discount,
		SlotBreakdown:  SlotBreakdown(eval.Matched),
	}
	return eval, nil
}

func (e *ComboEvaluation) exclude(item CartItem, qty int, reason error) {
	e.Excluded = append(e.Excluded, ExcludedItem{
		ProductRef: item.ProductRef,
		UnitPrice:  item.UnitPrice,
		Quantity:   qty,
		Reason:     reason,
	})
}

func checkRules(combo *model.Combo, matched []MatchedItem, slotUnits map[string]int, cartValue decimal.Decimal) error {
	r := combo.Rules
	if len(matched) == 0 {
		return fmt.Errorf("%w: no items matched any slot", ErrComboRulesViolated)
	}

	total := 0
	perProduct := make(map[string]int)
	for _, m := range matched {
		total += m.Quantity
		perProduct[m.ProductRef] += m.Quantity
	}

	if r.MinTotalItems > 0 && total < r.MinTotalItems {
		return fmt.Errorf("%w: %d items, minimum %d", ErrComboRulesViolated, total, r.MinTotalItems)
	}
	if r.MaxTotalItems > 0 && total > r.MaxTotalItems {
		return fmt.Errorf("%w: %d items, maximum %d", ErrComboRulesViolated, total, r.MaxTotalItems)
	}
	if !r.AllowDuplicateProducts {
		for ref, n := range perProduct {
			if n > 1 {
				return fmt.Errorf("%w: product %s appears %d times", ErrComboRulesViolated, ref, n)
			}
		}
	}
	if r.RequireAllSlotsFilled {
		for _, s := range combo.Slots {
			if s.Active && slotUnits[s.Name] == 0 {
				return fmt.Errorf("%w: slot %q is empty", ErrComboRulesViolated, s.Name)
			}
		}
	}
	if r.MinCartValue.IsPositive() && cartValue.LessThan(r.MinCartValue) {
		return fmt.Errorf("%w: cart value %s below %s", ErrComboRulesViolated, cartValue.StringFixed(2), r.MinCartValue.StringFixed(2))
	}
	if r.MaxCartValue.IsPositive() && cartValue.GreaterThan(r.MaxCartValue) {
		return fmt.Errorf("%w: cart value %s above %s", ErrComboRulesViolated, cartValue.StringFixed(2), r.MaxCartValue.StringFixed(2))
	}
	return nil
}
