package dto

import "github.com/shopspring/decimal"

// CreateBundleRequest materializes a bundle parent and its variant children.
type CreateBundleRequest struct {
	Name           string          `json:"name"            validate:"required,max=200"`
	Category       string          `json:"category"        validate:"required,max=60"`
	Subcategory    string          `json:"subcategory"     validate:"max=60"`
	BundleType     string          `json:"bundle_type"     validate:"required,oneof=sameSizeDifferentColors differentSizesSameColor differentSizesDifferentColors custom"`
	BasePrice      decimal.Decimal `json:"base_price"      validate:"min=0"`
	PriceVariation decimal.Decimal `json:"price_variation"`
	MRP            decimal.Decimal `json:"mrp"             validate:"min=0"`
	TaxRate        decimal.Decimal `json:"tax_rate"        validate:"min=0,max=100"`
	BaseSize       string          `json:"base_size"       validate:"max=20"`
	BaseColor      string          `json:"base_color"      validate:"max=30"`
	Sizes          []string        `json:"sizes"           validate:"omitempty,dive,required,max=20"`
	Colors         []string        `json:"colors"          validate:"omitempty,dive,required,max=30"`
	TotalQuantity  int             `json:"total_quantity"  validate:"required,min=1,max=999"`

	// Keyed by color, size, or "size/color" for mixed bundles.
	CustomVariantQuantities map[string]int `json:"custom_variant_quantities"`
}

type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Subcategory  string          `json:"subcategory,omitempty"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MRP          decimal.Decimal `json:"mrp"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Quantity     int             `json:"quantity"`
	Role         string          `json:"role"`
	ParentID     *string         `json:"parent_id,omitempty"`
	SerialNumber int             `json:"serial_number"`
}

type BundleResponse struct {
	Parent   ProductResponse   `json:"parent"`
	Children []ProductResponse `json:"children"`
}
