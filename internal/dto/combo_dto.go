package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PriceSlotRequest struct {
	Name     string          `json:"name"      validate:"required,max=50"`
	MinPrice decimal.Decimal `json:"min_price" validate:"min=0"`
	MaxPrice decimal.Decimal `json:"max_price" validate:"min=0"`
	MaxItems int             `json:"max_items" validate:"min=0"` // 0 = unlimited
	Priority int             `json:"priority"`
	// Active defaults to true when omitted
	Active *bool `json:"active"`
}

type ComboRulesRequest struct {
	MinTotalItems          int             `json:"min_total_items" validate:"min=0"`
	MaxTotalItems          int             `json:"max_total_items" validate:"min=0"`
	AllowDuplicateProducts bool            `json:"allow_duplicate_products"`
	RequireAllSlotsFilled  bool            `json:"require_all_slots_filled"`
	MinCartValue           decimal.Decimal `json:"min_cart_value" validate:"min=0"`
	MaxCartValue           decimal.Decimal `json:"max_cart_value" validate:"min=0"`
}

type BuyXGetYRequest struct {
	BuyQuantity  int `json:"buy_quantity"  validate:"min=1"`
	FreeQuantity int `json:"free_quantity" validate:"min=1"`
}

type CreateComboRequest struct {
	Code          string             `json:"code"           validate:"required,max=40"`
	Name          string             `json:"name"           validate:"required,max=120"`
	Slots         []PriceSlotRequest `json:"slots"          validate:"required,min=1,dive"`
	Rules         ComboRulesRequest  `json:"rules"`
	DiscountType  string             `json:"discount_type"  validate:"required,oneof=percentage fixed buyXGetY"`
	DiscountValue decimal.Decimal    `json:"discount_value" validate:"min=0"`
	MaxDiscount   *decimal.Decimal   `json:"max_discount"`
	BuyXGetY      *BuyXGetYRequest   `json:"buy_x_get_y"`
	ValidFrom     *time.Time         `json:"valid_from"`
	ValidUntil    *time.Time         `json:"valid_until"`
	UsageLimit    int                `json:"usage_limit"    validate:"min=0"`

	PreventHighValueInLowSlot bool `json:"prevent_high_value_in_low_slot"`
}

type CartItemRequest struct {
	ProductRef string          `json:"product_ref" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"  validate:"min=0"`
	Quantity   int             `json:"quantity"    validate:"required,min=1"`
	SlotName   string          `json:"slot_name"`
}

type EvaluateComboRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	// HighValuePolicy: exclude (default) drops rejected items, block fails the combo.
	HighValuePolicy string `json:"high_value_policy" validate:"omitempty,oneof=exclude block"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PriceSlotResponse struct {
	Name     string          `json:"name"`
	MinPrice decimal.Decimal `json:"min_price"`
	MaxPrice decimal.Decimal `json:"max_price"`
	MaxItems int             `json:"max_items"`
	Priority int             `json:"priority"`
	Active   bool            `json:"active"`
}

type ComboResponse struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Slots         []PriceSlotResponse `json:"slots"`
	Rules         ComboRulesRequest   `json:"rules"`
	DiscountType  string              `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MaxDiscount   *decimal.Decimal    `json:"max_discount,omitempty"`
	BuyXGetY      *BuyXGetYRequest    `json:"buy_x_get_y,omitempty"`
	ValidFrom     *time.Time          `json:"valid_from,omitempty"`
	ValidUntil    *time.Time          `json:"valid_until,omitempty"`
	UsageLimit    int                 `json:"usage_limit"`
	UsageCount    int                 `json:"usage_count"`
	Active        bool                `json:"active"`
	Paused        bool                `json:"paused"`

	PreventHighValueInLowSlot bool `json:"prevent_high_value_in_low_slot"`
}

type SlotBreakdownResponse struct {
	SlotName   string          `json:"slot_name"`
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type MatchedItemResponse struct {
	ProductRef string          `json:"product_ref"`
	SlotName   string          `json:"slot_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

type ExcludedItemResponse struct {
	ProductRef string          `json:"product_ref"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Reason     string          `json:"reason"`
}

type ComboEvaluationResponse struct {
	ComboCode      string                  `json:"combo_code"`
	OriginalAmount decimal.Decimal         `json:"original_amount"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	FinalAmount    decimal.Decimal         `json:"final_amount"`
	SavingsAmount  decimal.Decimal         `json:"savings_amount"`
	SlotBreakdown  []SlotBreakdownResponse `json:"slot_breakdown"`
	Matched        []MatchedItemResponse   `json:"matched"`
	Excluded       []ExcludedItemResponse  `json:"excluded"`
}
