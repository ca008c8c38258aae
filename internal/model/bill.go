package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComboAssignment flags a line as sold under a combo slot.
type ComboAssignment struct {
	ComboRef  string          `json:"combo_ref"`
	SlotName  string          `json:"slot_name"`
	SlotPrice decimal.Decimal `json:"slot_price"`
}

// BillLineItem is a priced line as seen by the billing aggregator.
type BillLineItem struct {
	ProductRef      string
	Quantity        int
	UnitPrice       decimal.Decimal
	MRP             decimal.Decimal
	LineDiscount    decimal.Decimal // per unit
	TaxRate         decimal.Decimal // percent
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	ComboAssignment *ComboAssignment
}

// SlotBreakdownEntry summarises the units a combo matched in one slot.
type SlotBreakdownEntry struct {
	SlotName   string          `json:"slot_name"`
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// AppliedCombo is the priced outcome of one combo on a bill.
type AppliedCombo struct {
	ComboRef       string
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	SavingsAmount  decimal.Decimal
	SlotBreakdown  []SlotBreakdownEntry
}

// BillTotals holds the aggregated figures of a bill.
// TaxableAmount = Subtotal - TotalDiscount - ComboSavings,
// GrandTotal = TaxableAmount + TotalTax, RoundOff = FinalAmount - GrandTotal.
type BillTotals struct {
	Subtotal       decimal.Decimal
	TotalDiscount  decimal.Decimal
	ComboSavings   decimal.Decimal
	TaxableAmount  decimal.Decimal
	TotalTax       decimal.Decimal
	GrandTotal     decimal.Decimal
	RoundOff       decimal.Decimal
	FinalAmount    decimal.Decimal
	TotalItemCount int
	IsComboSale    bool
	HasMixedItems  bool
}

// Bill is a closed, persisted transaction.
type Bill struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillNumber     string          `gorm:"uniqueIndex;not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalDiscount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ComboSavings   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxableAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RoundOff       decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	FinalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalItemCount int             `gorm:"not null"`
	IsComboSale    bool            `gorm:"not null;default:false"`
	HasMixedItems  bool            `gorm:"not null;default:false"`
	CustomerEmail  *string
	ReceiptPath    *string
	// ReceiptSweeps counts re-enqueues by the receipt sweep.
	ReceiptSweeps int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"index"`

	Lines  []BillLine  `gorm:"foreignKey:BillID"`
	Combos []BillCombo `gorm:"foreignKey:BillID"`
}

// BillLine is the persisted form of a BillLineItem.
type BillLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductCode  string          `gorm:"not null"`
	ProductName  string          `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MRP          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ComboCode    *string
	SlotName     *string
	SlotPrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
}

// BillCombo is the persisted form of an AppliedCombo.
type BillCombo struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID         uuid.UUID            `gorm:"type:uuid;index;not null"`
	ComboID        uuid.UUID            `gorm:"type:uuid;index;not null"`
	ComboCode      string               `gorm:"not null"`
	OriginalAmount decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	FinalAmount    decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	SavingsAmount  decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	SlotBreakdown  []SlotBreakdownEntry `gorm:"serializer:json;type:jsonb"`
}
