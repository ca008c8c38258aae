package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillNumberFormat(t *testing.T) {
	day := time.Date(2024, time.June, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "BILL/240615", BillScope(day))
	assert.Equal(t, "BILL2406150007", FormatBillNumber(day, 7))
	assert.Equal(t, "BILL24061512345", FormatBillNumber(day, 12345), "overflow widens rather than truncates")
}

func TestProductAndVendorCodes(t *testing.T) {
	assert.Equal(t, "PROD/SHI/FOR", ProductScope("SHI", "FOR"))
	assert.Equal(t, "SHI/FOR/SSDC/000042", FormatProductCode("SHI", "FOR", "SSDC", 42))
	assert.Equal(t, "VEN", VendorScope())
	assert.Equal(t, "VEN000003", FormatVendorCode(3))
	assert.Equal(t, "CAT/SHI", CategoryScope("SHI"))
	assert.Equal(t, "SHI012", FormatCategoryCode("SHI", 12))
	assert.Equal(t, "VAR/SHI/FOR/SSDC/000042", VariantScope("SHI/FOR/SSDC/000042"))
	assert.Equal(t, "SHI/FOR/SSDC/000042-002", FormatVariantCode("SHI/FOR/SSDC/000042", 2))
}

func TestCategoryPrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Shirts", "SHI"},
		{"t-shirts", "TSH"},
		{"Jo", "JOX"},
		{"", "XXX"},
		{"42 Kurtas", "KUR"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategoryPrefix(tc.in), tc.in)
	}
}
