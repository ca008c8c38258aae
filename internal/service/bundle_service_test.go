package service

import (
	"context"
	"testing"

	"github.com/Team-Techentia/veedra-sub001/internal/bundle"
	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBundleSvc() (BundleService, *stubProductRepo) {
	repo := newStubProductRepo()
	alloc := sequence.Retrying(sequence.NewMemoryAllocator(), 3)
	return NewBundleService(repo, alloc, pricing.DefaultBarcodePrefixes()), repo
}

func shirtBundle() dto.CreateBundleRequest {
	return dto.CreateBundleRequest{
		Name:           "Oxford Shirt",
		Category:       "Shirts",
		Subcategory:    "Formal",
		BundleType:     "sameSizeDifferentColors",
		BasePrice:      dec("799"),
		PriceVariation: dec("50"),
		TaxRate:        dec("5"),
		BaseSize:       "M",
		BaseColor:      "Red",
		Colors:         []string{"Red", "Blue", "Green"},
		TotalQuantity:  9,
	}
}

func TestMaterialize_ParentAndChildren(t *testing.T) {
	svc, repo := newBundleSvc()

	resp, err := svc.Materialize(context.Background(), shirtBundle())
	require.NoError(t, err)

	assert.Equal(t, "SHI/FOR/SSDC/000001-001", resp.Parent.Code)
	assert.Equal(t, "parent", resp.Parent.Role)
	assert.Equal(t, "Oxford Shirt - Red", resp.Parent.Name)
	assert.Nil(t, resp.Parent.ParentID)
	assert.True(t, dec("849").Equal(resp.Parent.SellingPrice))
	assert.True(t, dec("849").Equal(resp.Parent.MRP), "MRP defaults to the variant price")

	require.Len(t, resp.Children, 2)
	total := resp.Parent.Quantity
	for i, c := range resp.Children {
		assert.Equal(t, "child", c.Role)
		require.NotNil(t, c.ParentID)
		assert.Equal(t, resp.Parent.ID, *c.ParentID)
		assert.Equal(t, i+2, c.SerialNumber)
		assert.True(t, pricing.ValidBarcode(c.Barcode), c.Barcode)
		total += c.Quantity
	}
	assert.Equal(t, 9, total)
	assert.Equal(t, 3, repo.created)
}

func TestMaterialize_ReallocatesOnCodeConflict(t *testing.T) {
	svc, repo := newBundleSvc()
	repo.dupOnce = true

	resp, err := svc.Materialize(context.Background(), shirtBundle())
	require.NoError(t, err)
	assert.Equal(t, "SHI/FOR/SSDC/000002-001", resp.Parent.Code, "a fresh product sequence is drawn")
}

func TestMaterialize_InvalidSpecs(t *testing.T) {
	svc, _ := newBundleSvc()

	req := shirtBundle()
	req.BundleType = "pallet"
	_, err := svc.Materialize(context.Background(), req)
	assert.ErrorIs(t, err, bundle.ErrInvalidBundleSpec)

	req = shirtBundle()
	req.BundleType = "differentSizesDifferentColors"
	req.Sizes = []string{"S", "M", "L"}
	req.TotalQuantity = 4
	_, err = svc.Materialize(context.Background(), req)
	assert.ErrorIs(t, err, pricing.ErrQuantityMismatch)
}

func TestChildren(t *testing.T) {
	svc, _ := newBundleSvc()
	resp, err := svc.Materialize(context.Background(), shirtBundle())
	require.NoError(t, err)

	parentID := uuid.MustParse(resp.Parent.ID)
	children, err := svc.Children(context.Background(), parentID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, resp.Children[0].Code, children[0].Code)

	childID := uuid.MustParse(resp.Children[0].ID)
	_, err = svc.Children(context.Background(), childID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Children(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
