package repository

import (
	"context"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxReceiptSweeps is how many times the sweep re-enqueues one bill's receipt
// before leaving it to the dead letter queue.
const MaxReceiptSweeps = 3

type BillRepository interface {
	Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindByNumber(ctx context.Context, number string) (*model.Bill, error)
	SetReceiptPath(ctx context.Context, id uuid.UUID, path string) error
	// ListMissingReceipts returns bills created before cutoff that still have no
	// receipt and have been swept fewer than MaxReceiptSweeps times.
	ListMissingReceipts(ctx context.Context, cutoff time.Time, limit int) ([]model.Bill, error)
	MarkReceiptSwept(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) DB() *gorm.DB { return r.db }

// Create inserts the bill with its lines and combos (GORM saves the associations).
func (r *billRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).Preload("Lines").Preload("Combos").First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepo) FindByNumber(ctx context.Context, number string) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).Preload("Lines").Preload("Combos").
		Where("bill_number = ?", number).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *billRepo) SetReceiptPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Bill{}).Where("id = ?", id).Update("receipt_path", path).Error
}

func (r *billRepo) ListMissingReceipts(ctx context.Context, cutoff time.Time, limit int) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.WithContext(ctx).
		Where("receipt_path IS NULL AND created_at < ? AND receipt_sweeps < ?", cutoff, MaxReceiptSweeps).
		Order("created_at ASC").
		Limit(limit).
		Find(&bills).Error
	return bills, err
}

func (r *billRepo) MarkReceiptSwept(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Bill{}).Where("id = ?", id).
		Update("receipt_sweeps", gorm.Expr("receipt_sweeps + 1")).Error
}
