package service

import (
	"context"
	"testing"

	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogScan(t *testing.T) {
	barcode, err := pricing.BuildBarcode("210", "SHI/FOR/SSDC/000001-002", pricing.EAN13Length)
	require.NoError(t, err)
	p := catalogProduct("SHI/FOR/SSDC/000001-002", "849", "5")
	p.Barcode = barcode
	p.Role = model.RoleChild
	svc := NewCatalogService(newStubProductRepo(p), pricing.DefaultBarcodePrefixes())

	resp, err := svc.Scan(context.Background(), barcode)
	require.NoError(t, err)
	assert.Equal(t, "child", resp.PrefixRole)
	assert.Equal(t, p.Code, resp.Product.Code)

	// Flip the last digit: the check digit no longer closes the sum.
	last := barcode[len(barcode)-1]
	typo := barcode[:len(barcode)-1] + string('0'+(last-'0'+1)%10)
	_, err = svc.Scan(context.Background(), typo)
	assert.ErrorIs(t, err, pricing.ErrInvalidBarcode)

	other, err := pricing.BuildBarcode("220", "999", pricing.EAN13Length)
	require.NoError(t, err)
	_, err = svc.Scan(context.Background(), other)
	assert.ErrorIs(t, err, ErrNotFound)
}
