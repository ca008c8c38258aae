package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Team-Techentia/veedra-sub001/internal/bundle"
	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BundleService interface {
	Materialize(ctx context.Context, req dto.CreateBundleRequest) (*dto.BundleResponse, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]dto.ProductResponse, error)
}

type bundleService struct {
	products  repository.ProductRepository
	alloc     sequence.Allocator
	generator *bundle.Generator
}

// NewBundleService expects alloc to already carry retry behaviour (sequence.Retrying).
func NewBundleService(products repository.ProductRepository, alloc sequence.Allocator, prefixes pricing.BarcodePrefixes) BundleService {
	return &bundleService{
		products:  products,
		alloc:     alloc,
		generator: bundle.NewGenerator(alloc, prefixes),
	}
}

// maxCodeConflicts bounds how often Materialize re-allocates after a unique
// violation on a generated code or barcode.
const maxCodeConflicts = 3

// ── Materialize ───────────────────────────────────────────────────────────────
//   1. Allocate the parent product code  CAT/SUB/TAG/000123
//   2. Generate variants (codes, barcodes, quantities)
//   3. BEGIN TX: insert parent, then children pointing at it
//   4. COMMIT
// A unique violation restarts from step 1 with a fresh sequence value;
// the failed values are never reused.

func (s *bundleService) Materialize(ctx context.Context, req dto.CreateBundleRequest) (*dto.BundleResponse, error) {
	bt := model.BundleType(req.BundleType)
	if bt.Tag() == "" {
		return nil, fmt.Errorf("%w: unknown bundle type %q", bundle.ErrInvalidBundleSpec, req.BundleType)
	}

	var lastErr error
	for attempt := 1; attempt <= maxCodeConflicts; attempt++ {
		products, err := s.buildProducts(ctx, req)
		if err != nil {
			return nil, err
		}
		err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
			for i := range products {
				if err := s.products.CreateTx(ctx, tx, &products[i]); err != nil {
					return duplicate(err)
				}
			}
			return nil
		})
		if err == nil {
			log.Info().
				Str("parent_code", products[0].Code).
				Str("bundle_type", string(bt)).
				Int("variants", len(products)).
				Int("total_quantity", req.TotalQuantity).
				Msg("bundle materialized")
			return bundleToResponse(products), nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}
		lastErr = err
		log.Warn().Int("attempt", attempt).Str("category", req.Category).Msg("bundle: generated code already taken, re-allocating")
	}
	return nil, lastErr
}

func (s *bundleService) buildProducts(ctx context.Context, req dto.CreateBundleRequest) ([]model.Product, error) {
	bt := model.BundleType(req.BundleType)
	cat := sequence.CategoryPrefix(req.Category)
	sub := sequence.CategoryPrefix(req.Subcategory)
	seq, err := s.alloc.Next(ctx, sequence.ProductScope(cat, sub))
	if err != nil {
		return nil, fmt.Errorf("allocating product code: %w", err)
	}

	spec := model.BundleSpec{
		BundleType:              bt,
		ParentCode:              sequence.FormatProductCode(cat, sub, bt.Tag(), seq),
		BasePrice:               req.BasePrice,
		BaseSize:                req.BaseSize,
		BaseColor:               req.BaseColor,
		Sizes:                   req.Sizes,
		Colors:                  req.Colors,
		TotalQuantity:           req.TotalQuantity,
		PriceVariation:          req.PriceVariation,
		CustomVariantQuantities: req.CustomVariantQuantities,
	}
	variants, err := s.generator.GenerateVariants(ctx, spec)
	if err != nil {
		return nil, err
	}

	mrp := req.MRP
	if mrp.IsZero() {
		mrp = bundle.Price(spec)
	}

	parentID := uuid.New()
	products := make([]model.Product, len(variants))
	for i, v := range variants {
		p := model.Product{
			ID:           uuid.New(),
			Code:         v.Code,
			Barcode:      v.Barcode,
			Name:         variantName(req.Name, v.Label),
			Category:     req.Category,
			Subcategory:  req.Subcategory,
			Size:         v.Size,
			Color:        v.Color,
			SellingPrice: v.Price,
			MRP:          mrp,
			TaxRate:      req.TaxRate,
			Quantity:     v.Quantity,
			Role:         v.Role,
			SerialNumber: v.SerialNumber,
			Active:       true,
		}
		if v.Role == model.RoleParent {
			p.ID = parentID
		} else {
			pid := parentID
			p.ParentID = &pid
		}
		products[i] = p
	}
	return products, nil
}

func bundleToResponse(products []model.Product) *dto.BundleResponse {
	resp := &dto.BundleResponse{
		Parent:   productToResponse(&products[0]),
		Children: make([]dto.ProductResponse, 0, len(products)-1),
	}
	for i := 1; i < len(products); i++ {
		resp.Children = append(resp.Children, productToResponse(&products[i]))
	}
	return resp
}

func (s *bundleService) Children(ctx context.Context, parentID uuid.UUID) ([]dto.ProductResponse, error) {
	parent, err := s.products.FindByID(ctx, parentID)
	if err != nil {
		return nil, notFound(err)
	}
	if parent.Role != model.RoleParent {
		return nil, fmt.Errorf("product %s is not a bundle parent: %w", parent.Code, ErrNotFound)
	}
	children, err := s.products.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(children))
	for i := range children {
		out = append(out, productToResponse(&children[i]))
	}
	return out, nil
}

func variantName(base, label string) string {
	if label == "" {
		return base
	}
	return strings.TrimSpace(base) + " - " + label
}

func productToResponse(p *model.Product) dto.ProductResponse {
	var parentID *string
	if p.ParentID != nil {
		s := p.ParentID.String()
		parentID = &s
	}
	return dto.ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Category:     p.Category,
		Subcategory:  p.Subcategory,
		Size:         p.Size,
		Color:        p.Color,
		SellingPrice: p.SellingPrice,
		MRP:          p.MRP,
		TaxRate:      p.TaxRate,
		Quantity:     p.Quantity,
		Role:         string(p.Role),
		ParentID:     parentID,
		SerialNumber: p.SerialNumber,
	}
}
