package pricing

import (
	"fmt"
	"strings"

	"github.com/Team-Techentia/veedra-sub001/internal/model"
)

// EAN13Length is the total barcode length produced for catalog items.
const EAN13Length = 13

// CheckDigit weights digits 1 at even and 3 at odd 0-based indexes and returns
// the digit that lifts the weighted sum to a multiple of ten. Non-digit bytes
// are ignored by weight but still advance the index, so callers pass digits only.
func CheckDigit(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			continue
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

// BuildBarcode assembles prefix + zero-padded tail of the digits in code + check digit,
// length characters in total.
func BuildBarcode(prefix, code string, length int) (string, error) {
	if !isDigits(prefix) || prefix == "" {
		return "", fmt.Errorf("%w: prefix %q must be numeric", ErrInvalidBarcode, prefix)
	}
	payloadLen := length - len(prefix) - 1
	if payloadLen < 1 {
		return "", fmt.Errorf("%w: prefix %q leaves no room in %d digits", ErrInvalidBarcode, prefix, length)
	}

	digits := digitsOf(code)
	if len(digits) > payloadLen {
		digits = digits[len(digits)-payloadLen:]
	}
	body := prefix + strings.Repeat("0", payloadLen-len(digits)) + digits
	return fmt.Sprintf("%s%d", body, CheckDigit(body)), nil
}

// ValidBarcode reports whether the trailing digit of code is its check digit.
func ValidBarcode(code string) bool {
	if len(code) < 2 || !isDigits(code) {
		return false
	}
	body := code[:len(code)-1]
	return int(code[len(code)-1]-'0') == CheckDigit(body)
}

// BarcodePrefixes are the leading digit blocks that tell scanners what kind of
// item a code belongs to without a catalog lookup.
type BarcodePrefixes struct {
	Parent     string
	Child      string
	Standalone string
}

// DefaultBarcodePrefixes use the GS1 in-store range (20-29).
func DefaultBarcodePrefixes() BarcodePrefixes {
	return BarcodePrefixes{Parent: "200", Child: "210", Standalone: "220"}
}

// For returns the prefix assigned to role.
func (p BarcodePrefixes) For(role model.ProductRole) string {
	switch role {
	case model.RoleParent:
		return p.Parent
	case model.RoleChild:
		return p.Child
	default:
		return p.Standalone
	}
}

// Classify maps a scanned barcode back to its role. ok is false for codes
// that fail the check digit or carry an unknown prefix.
func (p BarcodePrefixes) Classify(barcode string) (role model.ProductRole, ok bool) {
	if !ValidBarcode(barcode) {
		return "", false
	}
	switch {
	case p.Parent != "" && strings.HasPrefix(barcode, p.Parent):
		return model.RoleParent, true
	case p.Child != "" && strings.HasPrefix(barcode, p.Child):
		return model.RoleChild, true
	case p.Standalone != "" && strings.HasPrefix(barcode, p.Standalone):
		return model.RoleStandalone, true
	}
	return "", false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
