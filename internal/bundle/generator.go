// Package bundle expands a bundle catalog entry into one parent and zero or
// more child variants, each with a quantity, a code and a barcode.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"

	"github.com/shopspring/decimal"
)

// ErrInvalidBundleSpec reports a spec that cannot describe any bundle.
var ErrInvalidBundleSpec = errors.New("invalid bundle spec")

// MaxTotalQuantity bounds both the units in one bundle and the variant
// suffixes under one parent code. Suffixes stay three digits so barcodes
// built from them cannot collide.
const MaxTotalQuantity = 999

// Generator allocates variant codes and barcodes for bundle specs.
type Generator struct {
	alloc    sequence.Allocator
	prefixes pricing.BarcodePrefixes
}

func NewGenerator(alloc sequence.Allocator, prefixes pricing.BarcodePrefixes) *Generator {
	return &Generator{alloc: alloc, prefixes: prefixes}
}

// axisEntry is one planned variant before quantities and codes are known.
type axisEntry struct {
	key   string
	label string
	size  string
	color string
}

// GenerateVariants returns the parent first, then the children in axis order.
// Quantities always add up to spec.TotalQuantity or the call fails with
// pricing.ErrQuantityMismatch.
func (g *Generator) GenerateVariants(ctx context.Context, spec model.BundleSpec) ([]model.Variant, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	plan, err := planAxis(spec)
	if err != nil {
		return nil, err
	}

	qty, err := splitQuantities(spec, plan)
	if err != nil {
		return nil, err
	}

	price := Price(spec)
	scope := sequence.VariantScope(spec.ParentCode)
	variants := make([]model.Variant, 0, len(plan))
	for i, e := range plan {
		role := model.RoleChild
		if i == 0 {
			role = model.RoleParent
		}

		seq, err := g.alloc.Next(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("allocate variant code for %s: %w", spec.ParentCode, err)
		}
		if seq > MaxTotalQuantity {
			return nil, fmt.Errorf("%w: variant suffixes exhausted for %s", ErrInvalidBundleSpec, spec.ParentCode)
		}
		code := sequence.FormatVariantCode(spec.ParentCode, seq)
		barcode, err := pricing.BuildBarcode(g.prefixes.For(role), code, pricing.EAN13Length)
		if err != nil {
			return nil, err
		}

		variants = append(variants, model.Variant{
			Label:        e.label,
			Size:         e.size,
			Color:        e.color,
			Quantity:     qty[i],
			SerialNumber: i + 1,
			Code:         code,
			Barcode:      barcode,
			Role:         role,
			Price:        price,
		})
	}

	total := 0
	for _, v := range variants {
		total += v.Quantity
	}
	if total != spec.TotalQuantity {
		return nil, fmt.Errorf("%w: variants sum to %d, bundle holds %d", pricing.ErrQuantityMismatch, total, spec.TotalQuantity)
	}
	return variants, nil
}

func validateSpec(spec model.BundleSpec) error {
	if spec.BundleType.Tag() == "" {
		return fmt.Errorf("%w: unknown bundle type %q", ErrInvalidBundleSpec, spec.BundleType)
	}
	if strings.TrimSpace(spec.ParentCode) == "" {
		return fmt.Errorf("%w: parent code is required", ErrInvalidBundleSpec)
	}
	if spec.TotalQuantity < 1 {
		return fmt.Errorf("%w: total quantity must be at least 1", ErrInvalidBundleSpec)
	}
	if spec.TotalQuantity > MaxTotalQuantity {
		return fmt.Errorf("%w: total quantity %d above %d", ErrInvalidBundleSpec, spec.TotalQuantity, MaxTotalQuantity)
	}
	for key, q := range spec.CustomVariantQuantities {
		if q < 0 {
			return fmt.Errorf("%w: negative quantity for %q", ErrInvalidBundleSpec, key)
		}
	}
	if spec.BasePrice.Add(spec.PriceVariation).IsNegative() {
		return fmt.Errorf("%w: price variation makes the variant price negative", ErrInvalidBundleSpec)
	}
	return nil
}

// planAxis lists the variants a BundleSpec describes, parent first.
func planAxis(spec model.BundleSpec) ([]axisEntry, error) {
	switch spec.BundleType {
	case model.BundleSameSizeDifferentColors:
		size := firstNonEmpty(spec.BaseSize, first(spec.Sizes))
		return colorAxis(size, withBase(spec.BaseColor, spec.Colors))

	case model.BundleDifferentSizesSameColor:
		color := firstNonEmpty(spec.BaseColor, first(spec.Colors))
		return sizeAxis(color, withBase(spec.BaseSize, spec.Sizes))

	case model.BundleDifferentSizesDifferentColors:
		return crossAxis(spec)

	case model.BundleCustom:
		sizes, colors := distinct(spec.Sizes), distinct(spec.Colors)
		switch {
		case len(sizes) > 1:
			return sizeAxis(spec.BaseColor, withBase(spec.BaseSize, sizes))
		case len(colors) > 1:
			return colorAxis(spec.BaseSize, withBase(spec.BaseColor, colors))
		default:
			return placeholderAxis(spec), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown bundle type %q", ErrInvalidBundleSpec, spec.BundleType)
}

func colorAxis(size string, colors []string) ([]axisEntry, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: at least one color is required", ErrInvalidBundleSpec)
	}
	out := make([]axisEntry, len(colors))
	for i, c := range colors {
		out[i] = axisEntry{key: c, label: c, size: size, color: c}
	}
	return out, nil
}

func sizeAxis(color string, sizes []string) ([]axisEntry, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: at least one size is required", ErrInvalidBundleSpec)
	}
	out := make([]axisEntry, len(sizes))
	for i, s := range sizes {
		out[i] = axisEntry{key: s, label: s, size: s, color: color}
	}
	return out, nil
}

// crossAxis is the full sizes × colors grid. The base size/color cell is the
// parent, and every cell needs at least one unit.
func crossAxis(spec model.BundleSpec) ([]axisEntry, error) {
	sizes := withBase(spec.BaseSize, spec.Sizes)
	colors := withBase(spec.BaseColor, spec.Colors)
	if len(sizes) == 0 || len(colors) == 0 {
		return nil, fmt.Errorf("%w: mixed bundles need sizes and colors", ErrInvalidBundleSpec)
	}
	cells := len(sizes) * len(colors)
	if spec.TotalQuantity < 2 || spec.TotalQuantity < cells {
		return nil, fmt.Errorf("%w: %d units cannot cover %d size/color combinations (minimum 2)",
			pricing.ErrQuantityMismatch, spec.TotalQuantity, cells)
	}

	out := make([]axisEntry, 0, cells)
	for _, s := range sizes {
		for _, c := range colors {
			key := s + "/" + c
			out = append(out, axisEntry{key: key, label: key, size: s, color: c})
		}
	}
	return out, nil
}

func placeholderAxis(spec model.BundleSpec) []axisEntry {
	out := make([]axisEntry, spec.TotalQuantity)
	for i := range out {
		label := fmt.Sprintf("Item %02d", i+1)
		out[i] = axisEntry{key: label, label: label, size: spec.BaseSize, color: spec.BaseColor}
	}
	return out
}

// splitQuantities gives each child its explicit quantity or an equal share of
// the total; the parent takes what is left.
func splitQuantities(spec model.BundleSpec, plan []axisEntry) ([]int, error) {
	known := make(map[string]bool, len(plan))
	for _, e := range plan {
		known[e.key] = true
	}
	for key := range spec.CustomVariantQuantities {
		if !known[key] {
			return nil, fmt.Errorf("%w: quantity given for unknown variant %q", ErrInvalidBundleSpec, key)
		}
	}

	share := spec.TotalQuantity / len(plan)
	qty := make([]int, len(plan))
	children := 0
	for i := 1; i < len(plan); i++ {
		q, ok := spec.CustomVariantQuantities[plan[i].key]
		if !ok {
			q = share
		}
		if q < 1 {
			return nil, fmt.Errorf("%w: variant %q would get %d units", pricing.ErrQuantityMismatch, plan[i].label, q)
		}
		qty[i] = q
		children += q
	}

	qty[0] = spec.TotalQuantity - children
	if qty[0] < 1 {
		return nil, fmt.Errorf("%w: children take %d of %d units, leaving none for the parent",
			pricing.ErrQuantityMismatch, children, spec.TotalQuantity)
	}
	if want, ok := spec.CustomVariantQuantities[plan[0].key]; ok && want != qty[0] {
		return nil, fmt.Errorf("%w: parent %q asked for %d units but %d remain",
			pricing.ErrQuantityMismatch, plan[0].label, want, qty[0])
	}
	return qty, nil
}

// withBase returns the distinct, non-blank values with base moved to the front.
func withBase(base string, values []string) []string {
	base = strings.TrimSpace(base)
	if base == "" {
		return distinct(values)
	}
	return distinct(append([]string{base}, values...))
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string { return first(values) }

// Price exposes the uniform variant price for callers building catalog rows.
func Price(spec model.BundleSpec) decimal.Decimal {
	return spec.BasePrice.Add(spec.PriceVariation)
}
