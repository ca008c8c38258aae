package service

import (
	"context"
	"fmt"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
)

// CatalogService resolves scanned barcodes to catalog products.
type CatalogService interface {
	Scan(ctx context.Context, barcode string) (*dto.ScanResponse, error)
}

type catalogService struct {
	products repository.ProductRepository
	prefixes pricing.BarcodePrefixes
}

func NewCatalogService(products repository.ProductRepository, prefixes pricing.BarcodePrefixes) CatalogService {
	return &catalogService{products: products, prefixes: prefixes}
}

// Scan rejects mistyped codes before touching the database. Codes with a
// foreign prefix are still looked up: they may be manufacturer EANs.
func (s *catalogService) Scan(ctx context.Context, barcode string) (*dto.ScanResponse, error) {
	if !pricing.ValidBarcode(barcode) {
		return nil, fmt.Errorf("%w: check digit mismatch for %q", pricing.ErrInvalidBarcode, barcode)
	}
	role, _ := s.prefixes.Classify(barcode)

	p, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFound(err)
	}
	return &dto.ScanResponse{
		Barcode:    barcode,
		PrefixRole: string(role),
		Product:    productToResponse(p),
	}, nil
}
