package dto

type CategoryCodeRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type CodeResponse struct {
	Code     string `json:"code"`
	Sequence int64  `json:"sequence"`
}

// ScanResponse answers a barcode scan. PrefixRole is what the prefix alone
// says; it is empty for codes printed outside the store range.
type ScanResponse struct {
	Barcode    string          `json:"barcode"`
	PrefixRole string          `json:"prefix_role,omitempty"`
	Product    ProductResponse `json:"product"`
}
