package service

import (
	"context"
	"sort"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository keyed by code.
type stubProductRepo struct {
	byCode map[string]*model.Product
	// dupOnce makes the next CreateTx fail with a unique violation.
	dupOnce bool
	created int
}

func newStubProductRepo(products ...model.Product) *stubProductRepo {
	r := &stubProductRepo{byCode: make(map[string]*model.Product)}
	for i := range products {
		p := products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.byCode[p.Code] = &p
	}
	return r
}

func (r *stubProductRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Product) error {
	if r.dupOnce {
		r.dupOnce = false
		return gorm.ErrDuplicatedKey
	}
	if _, exists := r.byCode[p.Code]; exists {
		return gorm.ErrDuplicatedKey
	}
	cp := *p
	r.byCode[p.Code] = &cp
	r.created++
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for _, p := range r.byCode {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindByCodes(_ context.Context, codes []string) ([]model.Product, error) {
	out := make([]model.Product, 0, len(codes))
	seen := make(map[string]bool)
	for _, c := range codes {
		if p, ok := r.byCode[c]; ok && p.Active && !seen[c] {
			out = append(out, *p)
			seen[c] = true
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.byCode {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) ListChildren(_ context.Context, parentID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.byCode {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubComboRepo is an in-memory ComboRepository. usageFull makes
// IncrementUsageTx report a lost race against the usage limit.
type stubComboRepo struct {
	byCode    map[string]*model.Combo
	usageFull bool
	bumps     map[uuid.UUID]int
}

func newStubComboRepo(combos ...*model.Combo) *stubComboRepo {
	r := &stubComboRepo{byCode: make(map[string]*model.Combo), bumps: make(map[uuid.UUID]int)}
	for _, c := range combos {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.byCode[c.Code] = c
	}
	return r
}

func (r *stubComboRepo) Create(_ context.Context, c *model.Combo) error {
	if _, ok := r.byCode[c.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	c.ID = uuid.New()
	r.byCode[c.Code] = c
	return nil
}

func (r *stubComboRepo) FindByCode(_ context.Context, code string) (*model.Combo, error) {
	c, ok := r.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubComboRepo) FindByCodes(_ context.Context, codes []string) ([]model.Combo, error) {
	out := make([]model.Combo, 0, len(codes))
	for _, code := range codes {
		if c, ok := r.byCode[code]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubComboRepo) List(_ context.Context, activeOnly bool) ([]model.Combo, error) {
	out := make([]model.Combo, 0, len(r.byCode))
	for _, c := range r.byCode {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *stubComboRepo) SetActive(_ context.Context, code string, active bool) error {
	c, ok := r.byCode[code]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Active = active
	return nil
}

func (r *stubComboRepo) SetPaused(_ context.Context, code string, paused bool) error {
	c, ok := r.byCode[code]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Paused = paused
	return nil
}

func (r *stubComboRepo) IncrementUsageTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (bool, error) {
	if r.usageFull {
		return false, nil
	}
	r.bumps[id]++
	return true, nil
}

func (r *stubComboRepo) DB() *gorm.DB { return nil }

var _ repository.ComboRepository = (*stubComboRepo)(nil)

// stubBillRepo stores bills by number. dupOnce fails the next Create with a
// unique violation on the bill number.
type stubBillRepo struct {
	byNumber map[string]*model.Bill
	dupOnce  bool
}

func newStubBillRepo() *stubBillRepo {
	return &stubBillRepo{byNumber: make(map[string]*model.Bill)}
}

func (r *stubBillRepo) Create(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	if r.dupOnce {
		r.dupOnce = false
		return gorm.ErrDuplicatedKey
	}
	r.byNumber[b.BillNumber] = b
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	for _, b := range r.byNumber {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBillRepo) FindByNumber(_ context.Context, number string) (*model.Bill, error) {
	b, ok := r.byNumber[number]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBillRepo) SetReceiptPath(_ context.Context, id uuid.UUID, path string) error {
	b, err := r.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	b.ReceiptPath = &path
	return nil
}

func (r *stubBillRepo) ListMissingReceipts(_ context.Context, _ time.Time, _ int) ([]model.Bill, error) {
	return nil, nil
}

func (r *stubBillRepo) MarkReceiptSwept(context.Context, uuid.UUID) error { return nil }

func (r *stubBillRepo) DB() *gorm.DB { return nil }

var _ repository.BillRepository = (*stubBillRepo)(nil)

// recordingQueue captures LPUSH calls for the receipt dispatcher.
type recordingQueue struct {
	pushed map[string]int
}

func (q *recordingQueue) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if q.pushed == nil {
		q.pushed = make(map[string]int)
	}
	q.pushed[key] += len(values)
	return redis.NewIntResult(int64(q.pushed[key]), nil)
}

func (q *recordingQueue) BRPop(_ context.Context, _ time.Duration, _ ...string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (q *recordingQueue) LLen(_ context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(q.pushed[key]), nil)
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 10, 14, 11, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func catalogProduct(code, price, tax string) model.Product {
	return model.Product{
		ID:           uuid.New(),
		Code:         code,
		Barcode:      "2000000" + code,
		Name:         "Product " + code,
		Category:     "Shirts",
		SellingPrice: dec(price),
		MRP:          dec(price).Add(dec("100")),
		TaxRate:      dec(tax),
		Quantity:     10,
		Role:         model.RoleStandalone,
		Active:       true,
	}
}

// festiveCombo: one unit per band, 10% off capped at 200.
func festiveCombo() *model.Combo {
	return &model.Combo{
		Code: "FESTIVE3",
		Name: "Festive three-band",
		Slots: []model.PriceSlot{
			{Name: "budget", MinPrice: dec("0"), MaxPrice: dec("500"), MaxItems: 1, Priority: 1, Active: true},
			{Name: "mid", MinPrice: dec("500.01"), MaxPrice: dec("1000"), MaxItems: 1, Priority: 1, Active: true},
			{Name: "premium", MinPrice: dec("1000.01"), MaxPrice: dec("3000"), MaxItems: 1, Priority: 1, Active: true},
		},
		Rules:        model.ComboRules{MinTotalItems: 2},
		DiscountType: model.DiscountPercentage,
		DiscountVal:  dec("10"),
		MaxDiscount:  ptr(dec("200")),
		Active:       true,
	}
}
