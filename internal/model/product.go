package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRole classifies a catalog entry for barcode prefixing and bundle bookkeeping.
type ProductRole string

const (
	RoleStandalone ProductRole = "standalone"
	RoleParent     ProductRole = "parent"
	RoleChild      ProductRole = "child"
)

// Product is a catalog entry. Bundle children point back to their parent via
// ParentID; the parent→children view is a query over that column.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code         string          `gorm:"uniqueIndex;not null"`
	Barcode      string          `gorm:"uniqueIndex;not null"`
	Name         string          `gorm:"index;not null"`
	Category     string          `gorm:"not null"`
	Subcategory  string          `gorm:"not null;default:''"`
	Size         string          `gorm:"not null;default:''"`
	Color        string          `gorm:"not null;default:''"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MRP          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Quantity     int             `gorm:"not null;default:0"`
	Role         ProductRole     `gorm:"type:varchar(12);not null;default:'standalone'"`
	ParentID     *uuid.UUID      `gorm:"type:uuid;index"`
	SerialNumber int             `gorm:"not null;default:0"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
