package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a combo turns its original amount into a discount.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountBuyXGetY   DiscountType = "buyXGetY"
)

// Valid reports whether t is one of the supported discount policies.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed, DiscountBuyXGetY:
		return true
	}
	return false
}

// PriceSlot is an inclusive price band inside a combo.
// MaxItems == 0 means the slot accepts any number of units.
type PriceSlot struct {
	Name     string          `json:"name"`
	MinPrice decimal.Decimal `json:"min_price"`
	MaxPrice decimal.Decimal `json:"max_price"`
	MaxItems int             `json:"max_items"`
	Priority int             `json:"priority"`
	Active   bool            `json:"active"`
}

// NewPriceSlot builds an active slot and rejects violated invariants up front.
func NewPriceSlot(name string, minPrice, maxPrice decimal.Decimal, maxItems, priority int) (PriceSlot, error) {
	s := PriceSlot{
		Name:     name,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		MaxItems: maxItems,
		Priority: priority,
		Active:   true,
	}
	if err := s.Validate(); err != nil {
		return PriceSlot{}, err
	}
	return s, nil
}

// Validate checks the band invariants.
func (s PriceSlot) Validate() error {
	if s.Name == "" {
		return errors.New("slot name is required")
	}
	if s.MinPrice.IsNegative() {
		return fmt.Errorf("slot %q: min price must not be negative", s.Name)
	}
	if s.MinPrice.GreaterThan(s.MaxPrice) {
		return fmt.Errorf("slot %q: min price %s exceeds max price %s", s.Name, s.MinPrice, s.MaxPrice)
	}
	if s.MaxItems < 0 {
		return fmt.Errorf("slot %q: max items must not be negative", s.Name)
	}
	return nil
}

// Contains reports whether price falls inside the inclusive band.
func (s PriceSlot) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(s.MinPrice) && price.LessThanOrEqual(s.MaxPrice)
}

// ComboRules are cart-level constraints evaluated after slot assignment.
// Zero values for MaxTotalItems and MaxCartValue leave the bound open.
type ComboRules struct {
	MinTotalItems          int             `json:"min_total_items"`
	MaxTotalItems          int             `json:"max_total_items"`
	AllowDuplicateProducts bool            `json:"allow_duplicate_products"`
	RequireAllSlotsFilled  bool            `json:"require_all_slots_filled"`
	MinCartValue           decimal.Decimal `json:"min_cart_value"`
	MaxCartValue           decimal.Decimal `json:"max_cart_value"`
}

func (r ComboRules) Validate() error {
	if r.MinTotalItems < 0 || r.MaxTotalItems < 0 {
		return errors.New("rules: item bounds must not be negative")
	}
	if r.MaxTotalItems > 0 && r.MinTotalItems > r.MaxTotalItems {
		return fmt.Errorf("rules: min total items %d exceeds max %d", r.MinTotalItems, r.MaxTotalItems)
	}
	if r.MinCartValue.IsNegative() || r.MaxCartValue.IsNegative() {
		return errors.New("rules: cart value bounds must not be negative")
	}
	if r.MaxCartValue.IsPositive() && r.MinCartValue.GreaterThan(r.MaxCartValue) {
		return fmt.Errorf("rules: min cart value %s exceeds max %s", r.MinCartValue, r.MaxCartValue)
	}
	return nil
}

// BuyXGetYPolicy parameterises the buyXGetY discount: for every X units
// paid, the next Y units (the cheapest of each group) are free.
type BuyXGetYPolicy struct {
	BuyQuantity  int `json:"buy_quantity"`
	FreeQuantity int `json:"free_quantity"`
}

func (p BuyXGetYPolicy) Valid() bool {
	return p.BuyQuantity >= 1 && p.FreeQuantity >= 1
}

// Combo is a purchasing rule granting a discount when items matching its
// slots are bought together. Combos are deactivated, never deleted.
type Combo struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code         string           `gorm:"uniqueIndex;not null" json:"code"`
	Name         string           `gorm:"not null" json:"name"`
	Slots        []PriceSlot      `gorm:"serializer:json;type:jsonb;not null" json:"slots"`
	Rules        ComboRules       `gorm:"serializer:json;type:jsonb;not null" json:"rules"`
	DiscountType DiscountType     `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountVal  decimal.Decimal  `gorm:"column:discount_value;type:decimal(12,2);not null;default:0" json:"discount_value"`
	MaxDiscount  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_discount,omitempty"`
	BuyXGetY     *BuyXGetYPolicy  `gorm:"serializer:json;type:jsonb" json:"buy_x_get_y,omitempty"`
	ValidFrom    *time.Time       `json:"valid_from,omitempty"`
	ValidUntil   *time.Time       `json:"valid_until,omitempty"`
	UsageLimit   int              `gorm:"not null;default:0" json:"usage_limit"` // 0 = unlimited
	UsageCount   int              `gorm:"not null;default:0" json:"usage_count"`
	// PreventHighValueInLowSlot enables the high-value guard during auto-assignment.
	PreventHighValueInLowSlot bool      `gorm:"not null;default:false" json:"prevent_high_value_in_low_slot"`
	Active                    bool      `gorm:"not null;default:true" json:"active"`
	Paused                    bool      `gorm:"not null;default:false" json:"paused"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Validate checks slots, rules and the discount policy as a unit.
func (c *Combo) Validate() error {
	if c.Code == "" {
		return errors.New("combo code is required")
	}
	if len(c.Slots) == 0 {
		return errors.New("combo needs at least one price slot")
	}
	seen := make(map[string]struct{}, len(c.Slots))
	for _, s := range c.Slots {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate slot name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if !c.DiscountType.Valid() {
		return fmt.Errorf("unknown discount type %q", c.DiscountType)
	}
	if c.DiscountVal.IsNegative() {
		return errors.New("discount value must not be negative")
	}
	if c.DiscountType == DiscountPercentage && c.DiscountVal.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percentage discount must not exceed 100")
	}
	if c.DiscountType == DiscountBuyXGetY && (c.BuyXGetY == nil || !c.BuyXGetY.Valid()) {
		return errors.New("buyXGetY discount requires buy and free quantities of at least 1")
	}
	if c.MaxDiscount != nil && c.MaxDiscount.IsNegative() {
		return errors.New("max discount must not be negative")
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return errors.New("valid_until is before valid_from")
	}
	if c.UsageLimit < 0 {
		return errors.New("usage limit must not be negative")
	}
	return nil
}
