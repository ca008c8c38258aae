package repository

import (
	"context"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComboRepository interface {
	Create(ctx context.Context, c *model.Combo) error
	FindByCode(ctx context.Context, code string) (*model.Combo, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Combo, error)
	List(ctx context.Context, activeOnly bool) ([]model.Combo, error)
	SetActive(ctx context.Context, code string, active bool) error
	SetPaused(ctx context.Context, code string, paused bool) error
	// IncrementUsageTx bumps usage_count only while it is below usage_limit.
	// ok is false when the limit was already reached.
	IncrementUsageTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (ok bool, err error)
	DB() *gorm.DB
}

type comboRepo struct{ db *gorm.DB }

func NewComboRepository(db *gorm.DB) ComboRepository { return &comboRepo{db: db} }

func (r *comboRepo) DB() *gorm.DB { return r.db }

func (r *comboRepo) Create(ctx context.Context, c *model.Combo) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comboRepo) FindByCode(ctx context.Context, code string) (*model.Combo, error) {
	var c model.Combo
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comboRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Combo, error) {
	var combos []model.Combo
	if len(codes) == 0 {
		return combos, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&combos).Error
	return combos, err
}

func (r *comboRepo) List(ctx context.Context, activeOnly bool) ([]model.Combo, error) {
	var combos []model.Combo
	q := r.db.WithContext(ctx).Order("code ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&combos).Error
	return combos, err
}

func (r *comboRepo) SetActive(ctx context.Context, code string, active bool) error {
	return r.updateFlag(ctx, code, "active", active)
}

func (r *comboRepo) SetPaused(ctx context.Context, code string, paused bool) error {
	return r.updateFlag(ctx, code, "paused", paused)
}

func (r *comboRepo) updateFlag(ctx context.Context, code, column string, value bool) error {
	res := r.db.WithContext(ctx).Model(&model.Combo{}).Where("code = ?", code).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *comboRepo) IncrementUsageTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).Model(&model.Combo{}).
		Where("id = ? AND (usage_limit = 0 OR usage_count < usage_limit)", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
