package model

import "github.com/shopspring/decimal"

// BundleType selects the variant expansion strategy.
type BundleType string

const (
	BundleSameSizeDifferentColors       BundleType = "sameSizeDifferentColors"
	BundleDifferentSizesSameColor       BundleType = "differentSizesSameColor"
	BundleDifferentSizesDifferentColors BundleType = "differentSizesDifferentColors"
	BundleCustom                        BundleType = "custom"
)

// Tag is the short form embedded in product codes.
func (t BundleType) Tag() string {
	switch t {
	case BundleSameSizeDifferentColors:
		return "SSDC"
	case BundleDifferentSizesSameColor:
		return "DSSC"
	case BundleDifferentSizesDifferentColors:
		return "DSDC"
	case BundleCustom:
		return "CUST"
	}
	return ""
}

// BundleSpec describes one catalog bundle to expand into variants.
// ParentCode and BasePrice come from the catalog entry being materialized.
type BundleSpec struct {
	BundleType     BundleType
	ParentCode     string
	BasePrice      decimal.Decimal
	BaseSize       string
	BaseColor      string
	Sizes          []string
	Colors         []string
	TotalQuantity  int
	PriceVariation decimal.Decimal
	// CustomVariantQuantities is keyed by color, size, or "size/color" for mixed bundles.
	CustomVariantQuantities map[string]int
}

// Variant is one generated inventory record of a bundle.
type Variant struct {
	Label        string
	Size         string
	Color        string
	Quantity     int
	SerialNumber int
	Code         string
	Barcode      string
	Role         ProductRole
	Price        decimal.Decimal
}
