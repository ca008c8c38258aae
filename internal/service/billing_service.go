package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/model"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"
	"github.com/Team-Techentia/veedra-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrInvalidBillLine = errors.New("invalid bill line")

type BillingService interface {
	Close(ctx context.Context, req dto.CloseBillRequest) (*dto.BillResponse, error)
	Get(ctx context.Context, number string) (*dto.BillResponse, error)
}

type billingService struct {
	products   repository.ProductRepository
	combos     repository.ComboRepository
	bills      repository.BillRepository
	alloc      sequence.Allocator
	dispatcher *worker.Dispatcher
	now        func() time.Time
}

// NewBillingService expects alloc to already carry retry behaviour (sequence.Retrying).
// dispatcher may be nil, in which case no receipt is produced.
func NewBillingService(
	products repository.ProductRepository,
	combos repository.ComboRepository,
	bills repository.BillRepository,
	alloc sequence.Allocator,
	dispatcher *worker.Dispatcher,
) BillingService {
	return &billingService{
		products:   products,
		combos:     combos,
		bills:      bills,
		alloc:      alloc,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ── Close ─────────────────────────────────────────────────────────────────────
//   1. Resolve catalog products (price, MRP, tax rate)
//   2. Evaluate every combo flagged on the lines; matched units carry the assignment
//   3. Price lines and aggregate totals (pure)
//   4. Allocate BILLyymmdd#### (outside the TX, numbers are never handed out twice)
//   5. BEGIN TX: insert bill + lines + combos, bump combo usage under its limit
//   6. COMMIT, then enqueue the receipt job (best effort)

func (s *billingService) Close(ctx context.Context, req dto.CloseBillRequest) (*dto.BillResponse, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: a bill needs at least one line", ErrInvalidBillLine)
	}
	now := s.now()

	catalog, err := s.resolveProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	lines := make([]model.BillLineItem, 0, len(req.Lines))
	groups := make(map[string][]int)
	var comboOrder []string
	for i, l := range req.Lines {
		p := catalog[l.ProductCode]
		if l.LineDiscount.GreaterThan(p.SellingPrice) {
			return nil, fmt.Errorf("%w: discount %s exceeds unit price %s for %s",
				ErrInvalidBillLine, l.LineDiscount.StringFixed(2), p.SellingPrice.StringFixed(2), p.Code)
		}
		lines = append(lines, model.BillLineItem{
			ProductRef:   p.Code,
			Quantity:     l.Quantity,
			UnitPrice:    p.SellingPrice,
			MRP:          p.MRP,
			LineDiscount: l.LineDiscount,
			TaxRate:      p.TaxRate,
		})
		if l.ComboCode != "" {
			if _, seen := groups[l.ComboCode]; !seen {
				comboOrder = append(comboOrder, l.ComboCode)
			}
			groups[l.ComboCode] = append(groups[l.ComboCode], i)
		}
	}

	combos, err := s.resolveCombos(ctx, comboOrder)
	if err != nil {
		return nil, err
	}

	opts := evaluateOptions(req.HighValuePolicy)
	plan := make(map[int]pricing.MatchedItem)
	applied := make([]model.AppliedCombo, 0, len(comboOrder))
	for _, code := range comboOrder {
		idx := groups[code]
		cart := make([]pricing.CartItem, 0, len(idx))
		for _, i := range idx {
			// combos see what the customer pays per unit after the line discount
			cart = append(cart, pricing.CartItem{
				ProductRef: lines[i].ProductRef,
				UnitPrice:  lines[i].UnitPrice.Sub(lines[i].LineDiscount),
				Quantity:   lines[i].Quantity,
				SlotName:   req.Lines[i].SlotName,
			})
		}
		eval, err := pricing.EvaluateCombo(combos[code], cart, now, opts)
		recordEvaluation(err)
		if err != nil {
			return nil, fmt.Errorf("combo %s: %w", code, err)
		}
		matchLines(plan, idx, eval.Matched)
		applied = append(applied, eval.Applied)
	}

	priced := make([]model.BillLineItem, 0, len(lines))
	for i, l := range lines {
		m, ok := plan[i]
		if !ok {
			priced = append(priced, pricing.PriceLine(l))
			continue
		}
		inCombo := l
		inCombo.Quantity = m.Quantity
		inCombo.ComboAssignment = &model.ComboAssignment{
			ComboRef:  req.Lines[i].ComboCode,
			SlotName:  m.SlotName,
			SlotPrice: m.UnitPrice,
		}
		priced = append(priced, pricing.PriceLine(inCombo))
		if rest := l.Quantity - m.Quantity; rest > 0 {
			l.Quantity = rest
			priced = append(priced, pricing.PriceLine(l))
		}
	}

	totals := pricing.Aggregate(priced, applied)
	if totals.TaxableAmount.IsNegative() {
		return nil, fmt.Errorf("%w: taxable amount %s is negative", ErrInvalidBillLine, totals.TaxableAmount.StringFixed(2))
	}

	var bill *model.Bill
	for attempt := 1; attempt <= maxCodeConflicts; attempt++ {
		seq, err := s.alloc.Next(ctx, sequence.BillScope(now))
		if err != nil {
			return nil, fmt.Errorf("allocating bill number: %w", err)
		}
		bill = buildBill(sequence.FormatBillNumber(now, seq), totals, priced, applied, catalog, combos, req.CustomerEmail)
		bill.CreatedAt = now

		err = runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
			if err := s.bills.Create(ctx, tx, bill); err != nil {
				return duplicate(err)
			}
			for _, c := range bill.Combos {
				ok, err := s.combos.IncrementUsageTx(ctx, tx, c.ComboID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("combo %s: %w", c.ComboCode, pricing.ErrComboUsageExceeded)
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateCode) || attempt == maxCodeConflicts {
			return nil, err
		}
		log.Warn().Str("bill_number", bill.BillNumber).Int("attempt", attempt).Msg("billing: bill number taken, re-allocating")
	}

	infra.BillsClosed.Inc()
	infra.BillFinalAmount.Observe(totals.FinalAmount.InexactFloat64())
	log.Info().
		Str("bill_number", bill.BillNumber).
		Str("final_amount", totals.FinalAmount.StringFixed(2)).
		Str("combo_savings", totals.ComboSavings.StringFixed(2)).
		Int("items", totals.TotalItemCount).
		Msg("bill closed")

	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{BillID: bill.ID.String(), CustomerEmail: req.CustomerEmail}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("bill_number", bill.BillNumber).Msg("billing: failed to enqueue receipt job")
		}
	}

	return billToResponse(bill), nil
}

func (s *billingService) Get(ctx context.Context, number string) (*dto.BillResponse, error) {
	bill, err := s.bills.FindByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err)
	}
	return billToResponse(bill), nil
}

func (s *billingService) resolveProducts(ctx context.Context, reqLines []dto.BillLineRequest) (map[string]*model.Product, error) {
	codes := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s has quantity %d", ErrInvalidBillLine, l.ProductCode, l.Quantity)
		}
		if l.LineDiscount.IsNegative() {
			return nil, fmt.Errorf("%w: negative discount on %s", ErrInvalidBillLine, l.ProductCode)
		}
		codes = append(codes, l.ProductCode)
	}
	found, err := s.products.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*model.Product, len(found))
	for i := range found {
		catalog[found[i].Code] = &found[i]
	}
	for _, c := range codes {
		if _, ok := catalog[c]; !ok {
			return nil, fmt.Errorf("product %s: %w", c, ErrNotFound)
		}
	}
	return catalog, nil
}

func (s *billingService) resolveCombos(ctx context.Context, codes []string) (map[string]*model.Combo, error) {
	out := make(map[string]*model.Combo, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	found, err := s.combos.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].Code] = &found[i]
	}
	for _, c := range codes {
		if _, ok := out[c]; !ok {
			return nil, fmt.Errorf("combo %s: %w", c, ErrNotFound)
		}
	}
	return out, nil
}

// matchLines records, per bill line, the units the engine matched. idx maps
// cart positions back to bill lines.
func matchLines(plan map[int]pricing.MatchedItem, idx []int, matched []pricing.MatchedItem) {
	for _, m := range matched {
		plan[idx[m.CartIndex]] = m
	}
}

func buildBill(
	number string,
	totals model.BillTotals,
	lines []model.BillLineItem,
	applied []model.AppliedCombo,
	catalog map[string]*model.Product,
	combos map[string]*model.Combo,
	email *string,
) *model.Bill {
	bill := &model.Bill{
		ID:             uuid.New(),
		BillNumber:     number,
		Subtotal:       totals.Subtotal,
		TotalDiscount:  totals.TotalDiscount,
		ComboSavings:   totals.ComboSavings,
		TaxableAmount:  totals.TaxableAmount,
		TotalTax:       totals.TotalTax,
		GrandTotal:     totals.GrandTotal,
		RoundOff:       totals.RoundOff,
		FinalAmount:    totals.FinalAmount,
		TotalItemCount: totals.TotalItemCount,
		IsComboSale:    totals.IsComboSale,
		HasMixedItems:  totals.HasMixedItems,
		CustomerEmail:  email,
	}
	for _, l := range lines {
		p := catalog[l.ProductRef]
		bl := model.BillLine{
			ID:           uuid.New(),
			BillID:       bill.ID,
			ProductID:    p.ID,
			ProductCode:  p.Code,
			ProductName:  p.Name,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			MRP:          l.MRP,
			LineDiscount: l.LineDiscount,
			TaxRate:      l.TaxRate,
			TaxAmount:    l.TaxAmount,
			TotalAmount:  l.TotalAmount,
		}
		if a := l.ComboAssignment; a != nil {
			code, slot, price := a.ComboRef, a.SlotName, a.SlotPrice
			bl.ComboCode, bl.SlotName, bl.SlotPrice = &code, &slot, &price
		}
		bill.Lines = append(bill.Lines, bl)
	}
	for _, a := range applied {
		bill.Combos = append(bill.Combos, model.BillCombo{
			ID:             uuid.New(),
			BillID:         bill.ID,
			ComboID:        combos[a.ComboRef].ID,
			ComboCode:      a.ComboRef,
			OriginalAmount: a.OriginalAmount,
			DiscountAmount: a.DiscountAmount,
			FinalAmount:    a.FinalAmount,
			SavingsAmount:  a.SavingsAmount,
			SlotBreakdown:  a.SlotBreakdown,
		})
	}
	return bill
}

func billToResponse(b *model.Bill) *dto.BillResponse {
	resp := &dto.BillResponse{
		ID:             b.ID.String(),
		BillNumber:     b.BillNumber,
		Lines:          make([]dto.BillLineResponse, 0, len(b.Lines)),
		Combos:         make([]dto.AppliedComboResponse, 0, len(b.Combos)),
		Subtotal:       b.Subtotal,
		TotalDiscount:  b.TotalDiscount,
		ComboSavings:   b.ComboSavings,
		TaxableAmount:  b.TaxableAmount,
		TotalTax:       b.TotalTax,
		GrandTotal:     b.GrandTotal,
		RoundOff:       b.RoundOff,
		FinalAmount:    b.FinalAmount,
		TotalItemCount: b.TotalItemCount,
		IsComboSale:    b.IsComboSale,
		HasMixedItems:  b.HasMixedItems,
		CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, l := range b.Lines {
		resp.Lines = append(resp.Lines, dto.BillLineResponse{
			ProductCode:  l.ProductCode,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			MRP:          l.MRP,
			LineDiscount: l.LineDiscount,
			TaxRate:      l.TaxRate,
			TaxAmount:    l.TaxAmount,
			TotalAmount:  l.TotalAmount,
			ComboCode:    l.ComboCode,
			SlotName:     l.SlotName,
			SlotPrice:    l.SlotPrice,
		})
	}
	for _, c := range b.Combos {
		resp.Combos = append(resp.Combos, dto.AppliedComboResponse{
			ComboCode:      c.ComboCode,
			OriginalAmount: c.OriginalAmount,
			DiscountAmount: c.DiscountAmount,
			FinalAmount:    c.FinalAmount,
			SavingsAmount:  c.SavingsAmount,
			SlotBreakdown:  breakdownToResponse(c.SlotBreakdown),
		})
	}
	return resp
}
