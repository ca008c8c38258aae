package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BillLineRequest struct {
	ProductCode  string          `json:"product_code"  validate:"required"`
	Quantity     int             `json:"quantity"      validate:"required,min=1"`
	LineDiscount decimal.Decimal `json:"line_discount" validate:"min=0"` // per unit
	// ComboCode flags the line for a combo; SlotName optionally pins the slot.
	ComboCode string `json:"combo_code" validate:"omitempty,max=40"`
	SlotName  string `json:"slot_name"  validate:"omitempty,max=50"`
}

type CloseBillRequest struct {
	Lines []BillLineRequest `json:"lines" validate:"required,min=1,dive"`
	// CustomerEmail: optional, when present the receipt worker mails the PDF.
	CustomerEmail   *string `json:"customer_email"    validate:"omitempty,email"`
	HighValuePolicy string  `json:"high_value_policy" validate:"omitempty,oneof=exclude block"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BillLineResponse struct {
	ProductCode  string           `json:"product_code"`
	ProductName  string           `json:"product_name"`
	Quantity     int              `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	MRP          decimal.Decimal  `json:"mrp"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
	TaxRate      decimal.Decimal  `json:"tax_rate"`
	TaxAmount    decimal.Decimal  `json:"tax_amount"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	ComboCode    *string          `json:"combo_code,omitempty"`
	SlotName     *string          `json:"slot_name,omitempty"`
	SlotPrice    *decimal.Decimal `json:"slot_price,omitempty"`
}

type AppliedComboResponse struct {
	ComboCode      string                  `json:"combo_code"`
	OriginalAmount decimal.Decimal         `json:"original_amount"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	FinalAmount    decimal.Decimal         `json:"final_amount"`
	SavingsAmount  decimal.Decimal         `json:"savings_amount"`
	SlotBreakdown  []SlotBreakdownResponse `json:"slot_breakdown"`
}

type BillResponse struct {
	ID             string                 `json:"id"`
	BillNumber     string                 `json:"bill_number"`
	Lines          []BillLineResponse     `json:"lines"`
	Combos         []AppliedComboResponse `json:"combos"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	TotalDiscount  decimal.Decimal        `json:"total_discount"`
	ComboSavings   decimal.Decimal        `json:"combo_savings"`
	TaxableAmount  decimal.Decimal        `json:"taxable_amount"`
	TotalTax       decimal.Decimal        `json:"total_tax"`
	GrandTotal     decimal.Decimal        `json:"grand_total"`
	RoundOff       decimal.Decimal        `json:"round_off"`
	FinalAmount    decimal.Decimal        `json:"final_amount"`
	TotalItemCount int                    `json:"total_item_count"`
	IsComboSale    bool                   `json:"is_combo_sale"`
	HasMixedItems  bool                   `json:"has_mixed_items"`
	CreatedAt      string                 `json:"created_at"`
}
