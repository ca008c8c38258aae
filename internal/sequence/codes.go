package sequence

import (
	"fmt"
	"strings"
	"time"
)

const (
	billPrefix   = "BILL"
	vendorPrefix = "VEN"
	billDate     = "060102" // YYMMDD
)

// BillScope keys bill numbers by calendar day, so numbering restarts daily.
func BillScope(day time.Time) string {
	return billPrefix + "/" + day.Format(billDate)
}

// FormatBillNumber renders BILL + YYMMDD + 4-digit sequence, e.g. BILL2406150007.
func FormatBillNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", billPrefix, day.Format(billDate), seq)
}

// ProductScope keys product codes by category and subcategory prefix.
func ProductScope(categoryPrefix, subcategoryPrefix string) string {
	return "PROD/" + categoryPrefix + "/" + subcategoryPrefix
}

// FormatProductCode renders <cat>/<sub>/<tag>/<6-digit sequence>.
func FormatProductCode(categoryPrefix, subcategoryPrefix, tag string, seq int64) string {
	return fmt.Sprintf("%s/%s/%s/%06d", categoryPrefix, subcategoryPrefix, tag, seq)
}

// VendorScope is global: vendor codes share one counter.
func VendorScope() string { return vendorPrefix }

// FormatVendorCode renders VEN + 6 digits.
func FormatVendorCode(seq int64) string {
	return fmt.Sprintf("%s%06d", vendorPrefix, seq)
}

func CategoryScope(prefix string) string { return "CAT/" + prefix }

// FormatCategoryCode renders the prefix followed by a 3-digit sequence, e.g. SHI001.
func FormatCategoryCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// VariantScope keys variant suffixes by the parent code they extend.
func VariantScope(parentCode string) string { return "VAR/" + parentCode }

// FormatVariantCode appends a 3-digit suffix to the parent code.
func FormatVariantCode(parentCode string, seq int64) string {
	return fmt.Sprintf("%s-%03d", parentCode, seq)
}

// CategoryPrefix derives a 3-letter upper-case prefix from a category name,
// skipping anything that is not an ASCII letter and padding short names with X.
func CategoryPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() == 3 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}
