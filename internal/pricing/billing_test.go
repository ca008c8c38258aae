package pricing

import (
	"testing"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_RoundTrip(t *testing.T) {
	lines := []model.BillLineItem{
		{ProductRef: "a", Quantity: 1, UnitPrice: d("499.75"), TaxAmount: d("25.00")},
		{ProductRef: "b", Quantity: 2, UnitPrice: d("249.875"), TaxAmount: d("25.00")},
	}
	got := Aggregate(lines, nil)

	assert.True(t, d("999.50").Equal(got.Subtotal), "subtotal %s", got.Subtotal)
	assert.True(t, got.TotalDiscount.IsZero())
	assert.True(t, got.ComboSavings.IsZero())
	assert.True(t, d("999.50").Equal(got.TaxableAmount))
	assert.True(t, d("50.00").Equal(got.TotalTax))
	assert.True(t, d("1049.50").Equal(got.GrandTotal))
	assert.True(t, d("1050").Equal(got.FinalAmount), "half rounds away from zero")
	assert.True(t, d("0.50").Equal(got.RoundOff))
	assert.Equal(t, 3, got.TotalItemCount)
	assert.False(t, got.IsComboSale)
	assert.False(t, got.HasMixedItems)
}

func TestAggregate_RoundsDown(t *testing.T) {
	got := Aggregate([]model.BillLineItem{{Quantity: 1, UnitPrice: d("100.49")}}, nil)
	assert.True(t, d("100").Equal(got.FinalAmount))
	assert.True(t, d("-0.49").Equal(got.RoundOff))
}

func TestAggregate_DiscountsComboSavingsAndFlags(t *testing.T) {
	combo := &model.ComboAssignment{ComboRef: "FESTIVE3", SlotName: "budget", SlotPrice: d("450")}
	lines := []model.BillLineItem{
		{ProductRef: "a", Quantity: 2, UnitPrice: d("450"), LineDiscount: d("10"), TaxAmount: d("44"), ComboAssignment: combo},
		{ProductRef: "b", Quantity: 1, UnitPrice: d("300"), TaxAmount: d("15")},
	}
	applied := []model.AppliedCombo{{ComboRef: "FESTIVE3", SavingsAmount: d("90")}}

	got := Aggregate(lines, applied)

	assert.True(t, d("1200").Equal(got.Subtotal))
	assert.True(t, d("20").Equal(got.TotalDiscount), "line discount is per unit")
	assert.True(t, d("90").Equal(got.ComboSavings))
	assert.True(t, d("1090").Equal(got.TaxableAmount))
	assert.True(t, d("59").Equal(got.TotalTax))
	assert.True(t, d("1149").Equal(got.GrandTotal))
	assert.True(t, got.FinalAmount.Sub(got.GrandTotal).Equal(got.RoundOff))
	assert.True(t, got.IsComboSale)
	assert.True(t, got.HasMixedItems)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	lines := []model.BillLineItem{
		{Quantity: 3, UnitPrice: d("33.33"), LineDiscount: d("1.11"), TaxAmount: d("4.83")},
		{Quantity: 1, UnitPrice: d("0.01")},
	}
	first := Aggregate(lines, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Aggregate(lines, nil))
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, nil)
	assert.True(t, got.FinalAmount.IsZero())
	assert.True(t, got.RoundOff.IsZero())
	assert.Zero(t, got.TotalItemCount)
}

func TestPriceLine(t *testing.T) {
	line := PriceLine(model.BillLineItem{
		Quantity:     2,
		UnitPrice:    d("599"),
		LineDiscount: d("49"),
		TaxRate:      d("12"),
	})
	assert.True(t, d("132").Equal(line.TaxAmount), "12 percent of 1100")
	assert.True(t, d("1232").Equal(line.TotalAmount))

	line = PriceLine(model.BillLineItem{Quantity: 1, UnitPrice: d("99.99"), TaxRate: d("5")})
	assert.True(t, d("5").Equal(line.TaxAmount), "4.9995 rounds to 5.00")
}
