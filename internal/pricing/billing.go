package pricing

import (
	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// PriceLine fills TaxAmount and TotalAmount from the unit figures:
// net = (UnitPrice - LineDiscount) × Quantity, tax = net × TaxRate / 100 rounded to cents.
func PriceLine(line model.BillLineItem) model.BillLineItem {
	qty := decimal.NewFromInt(int64(line.Quantity))
	net := line.UnitPrice.Sub(line.LineDiscount).Mul(qty)
	line.TaxAmount = net.Mul(line.TaxRate).Div(hundred).Round(2)
	line.TotalAmount = net.Add(line.TaxAmount)
	return line
}

// Aggregate reduces priced lines and applied combos into bill totals.
// FinalAmount rounds GrandTotal half away from zero to the whole currency unit.
func Aggregate(lines []model.BillLineItem, combos []model.AppliedCombo) model.BillTotals {
	t := model.BillTotals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		ComboSavings:  decimal.Zero,
		TotalTax:      decimal.Zero,
	}

	var comboLines, plainLines int
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		t.Subtotal = t.Subtotal.Add(l.UnitPrice.Mul(qty))
		t.TotalDiscount = t.TotalDiscount.Add(l.LineDiscount.Mul(qty))
		t.TotalTax = t.TotalTax.Add(l.TaxAmount)
		t.TotalItemCount += l.Quantity
		if l.ComboAssignment != nil {
			comboLines++
		} else {
			plainLines++
		}
	}
	for _, c := range combos {
		t.ComboSavings = t.ComboSavings.Add(c.SavingsAmount)
	}

	t.TaxableAmount = t.Subtotal.Sub(t.TotalDiscount).Sub(t.ComboSavings)
	t.GrandTotal = t.TaxableAmount.Add(t.TotalTax)
	t.FinalAmount = t.GrandTotal.Round(0)
	t.RoundOff = t.FinalAmount.Sub(t.GrandTotal)
	t.IsComboSale = len(combos) > 0
	t.HasMixedItems = comboLines > 0 && plainLines > 0
	return t
}
