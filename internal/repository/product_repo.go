package repository

import (
	"context"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Product, error)
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Product, error) {
	var products []model.Product
	if len(codes) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ? AND active = ?", codes, true).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("barcode = ? AND active = ?", barcode, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListChildren is the parent→children index: a query on parent_id, ordered by serial.
func (r *productRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Product, error) {
	var children []model.Product
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("serial_number ASC").
		Find(&children).Error
	return children, err
}
