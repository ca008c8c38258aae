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

	"github.com/rs/zerolog/log"
)

type ComboService interface {
	Create(ctx context.Context, req dto.CreateComboRequest) (*dto.ComboResponse, error)
	Get(ctx context.Context, code string) (*dto.ComboResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.ComboResponse, error)
	Deactivate(ctx context.Context, code string) error
	SetPaused(ctx context.Context, code string, paused bool) error
	Evaluate(ctx context.Context, code string, req dto.EvaluateComboRequest) (*dto.ComboEvaluationResponse, error)
}

type comboService struct {
	repo repository.ComboRepository
	now  func() time.Time
}

func NewComboService(repo repository.ComboRepository) ComboService {
	return &comboService{repo: repo, now: time.Now}
}

func (s *comboService) Create(ctx context.Context, req dto.CreateComboRequest) (*dto.ComboResponse, error) {
	combo := comboFromRequest(req)
	if err := combo.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCombo, err)
	}
	if existing, err := s.repo.FindByCode(ctx, combo.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("combo %s: %w", combo.Code, ErrDuplicateCode)
	}
	if err := s.repo.Create(ctx, combo); err != nil {
		return nil, duplicate(err)
	}
	log.Info().Str("combo_code", combo.Code).Str("discount_type", string(combo.DiscountType)).Msg("combo created")
	return comboToResponse(combo), nil
}

func (s *comboService) Get(ctx context.Context, code string) (*dto.ComboResponse, error) {
	combo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, notFound(err)
	}
	return comboToResponse(combo), nil
}

func (s *comboService) List(ctx context.Context, activeOnly bool) ([]dto.ComboResponse, error) {
	combos, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComboResponse, 0, len(combos))
	for i := range combos {
		out = append(out, *comboToResponse(&combos[i]))
	}
	return out, nil
}

// Deactivate retires a combo. Bills keep referencing it, so rows are never deleted.
func (s *comboService) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, false); err != nil {
		return notFound(err)
	}
	log.Info().Str("combo_code", code).Msg("combo deactivated")
	return nil
}

func (s *comboService) SetPaused(ctx context.Context, code string, paused bool) error {
	if err := s.repo.SetPaused(ctx, code, paused); err != nil {
		return notFound(err)
	}
	log.Info().Str("combo_code", code).Bool("paused", paused).Msg("combo pause toggled")
	return nil
}

// Evaluate prices a cart against one combo without persisting anything.
func (s *comboService) Evaluate(ctx context.Context, code string, req dto.EvaluateComboRequest) (*dto.ComboEvaluationResponse, error) {
	combo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, notFound(err)
	}
	cart := make([]pricing.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		cart = append(cart, pricing.CartItem{
			ProductRef: it.ProductRef,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			SlotName:   it.SlotName,
		})
	}

	eval, err := pricing.EvaluateCombo(combo, cart, s.now(), evaluateOptions(req.HighValuePolicy))
	recordEvaluation(err)
	if err != nil {
		return nil, err
	}
	return evaluationToResponse(eval), nil
}

func evaluateOptions(policy string) pricing.EvaluateOptions {
	if policy == "block" {
		return pricing.EvaluateOptions{HighValue: pricing.HighValueBlock}
	}
	return pricing.EvaluateOptions{HighValue: pricing.HighValueExclude}
}

func recordEvaluation(err error) {
	outcome := "applied"
	switch {
	case err == nil:
	case errors.Is(err, pricing.ErrInvalidDiscountPolicy):
		outcome = "invalid"
	default:
		outcome = "rejected"
	}
	infra.ComboEvaluations.WithLabelValues(outcome).Inc()
}

func comboFromRequest(req dto.CreateComboRequest) *model.Combo {
	slots := make([]model.PriceSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		slots = append(slots, model.PriceSlot{
			Name:     s.Name,
			MinPrice: s.MinPrice,
			MaxPrice: s.MaxPrice,
			MaxItems: s.MaxItems,
			Priority: s.Priority,
			Active:   active,
		})
	}
	var bxgy *model.BuyXGetYPolicy
	if req.BuyXGetY != nil {
		bxgy = &model.BuyXGetYPolicy{BuyQuantity: req.BuyXGetY.BuyQuantity, FreeQuantity: req.BuyXGetY.FreeQuantity}
	}
	return &model.Combo{
		Code:  req.Code,
		Name:  req.Name,
		Slots: slots,
		Rules: model.ComboRules{
			MinTotalItems:          req.Rules.MinTotalItems,
			MaxTotalItems:          req.Rules.MaxTotalItems,
			AllowDuplicateProducts: req.Rules.AllowDuplicateProducts,
			RequireAllSlotsFilled:  req.Rules.RequireAllSlotsFilled,
			MinCartValue:           req.Rules.MinCartValue,
			MaxCartValue:           req.Rules.MaxCartValue,
		},
		DiscountType:              model.DiscountType(req.DiscountType),
		DiscountVal:               req.DiscountValue,
		MaxDiscount:               req.MaxDiscount,
		BuyXGetY:                  bxgy,
		ValidFrom:                 req.ValidFrom,
		ValidUntil:                req.ValidUntil,
		UsageLimit:                req.UsageLimit,
		PreventHighValueInLowSlot: req.PreventHighValueInLowSlot,
		Active:                    true,
	}
}

func comboToResponse(c *model.Combo) *dto.ComboResponse {
	slots := make([]dto.PriceSlotResponse, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, dto.PriceSlotResponse{
			Name:     s.Name,
			MinPrice: s.MinPrice,
			MaxPrice: s.MaxPrice,
			MaxItems: s.MaxItems,
			Priority: s.Priority,
			Active:   s.Active,
		})
	}
	var bxgy *dto.BuyXGetYRequest
	if c.BuyXGetY != nil {
		bxgy = &dto.BuyXGetYRequest{BuyQuantity: c.BuyXGetY.BuyQuantity, FreeQuantity: c.BuyXGetY.FreeQuantity}
	}
	return &dto.ComboResponse{
		ID:    c.ID.String(),
		Code:  c.Code,
		Name:  c.Name,
		Slots: slots,
		Rules: dto.ComboRulesRequest{
			MinTotalItems:          c.Rules.MinTotalItems,
			MaxTotalItems:          c.Rules.MaxTotalItems,
			AllowDuplicateProducts: c.Rules.AllowDuplicateProducts,
			RequireAllSlotsFilled:  c.Rules.RequireAllSlotsFilled,
			MinCartValue:           c.Rules.MinCartValue,
			MaxCartValue:           c.Rules.MaxCartValue,
		},
		DiscountType:              string(c.DiscountType),
		DiscountValue:             c.DiscountVal,
		MaxDiscount:               c.MaxDiscount,
		BuyXGetY:                  bxgy,
		ValidFrom:                 c.ValidFrom,
		ValidUntil:                c.ValidUntil,
		UsageLimit:                c.UsageLimit,
		UsageCount:                c.UsageCount,
		Active:                    c.Active,
		Paused:                    c.Paused,
		PreventHighValueInLowSlot: c.PreventHighValueInLowSlot,
	}
}

func evaluationToResponse(e *pricing.ComboEvaluation) *dto.ComboEvaluationResponse {
	resp := &dto.ComboEvaluationResponse{
		ComboCode:      e.Applied.ComboRef,
		OriginalAmount: e.Applied.OriginalAmount,
		DiscountAmount: e.Applied.DiscountAmount,
		FinalAmount:    e.Applied.FinalAmount,
		SavingsAmount:  e.Applied.SavingsAmount,
		SlotBreakdown:  breakdownToResponse(e.Applied.SlotBreakdown),
		Matched:        make([]dto.MatchedItemResponse, 0, len(e.Matched)),
		Excluded:       make([]dto.ExcludedItemResponse, 0, len(e.Excluded)),
	}
	for _, m := range e.Matched {
		resp.Matched = append(resp.Matched, dto.MatchedItemResponse{
			ProductRef: m.ProductRef,
			SlotName:   m.SlotName,
			UnitPrice:  m.UnitPrice,
			Quantity:   m.Quantity,
		})
	}
	for _, x := range e.Excluded {
		resp.Excluded = append(resp.Excluded, dto.ExcludedItemResponse{
			ProductRef: x.ProductRef,
			UnitPrice:  x.UnitPrice,
			Quantity:   x.Quantity,
			Reason:     x.Reason.Error(),
		})
	}
	return resp
}

func breakdownToResponse(entries []model.SlotBreakdownEntry) []dto.SlotBreakdownResponse {
	out := make([]dto.SlotBreakdownResponse, 0, len(entries))
	for _, b := range entries {
		out = append(out, dto.SlotBreakdownResponse{SlotName: b.SlotName, ItemCount: b.ItemCount, TotalValue: b.TotalValue})
	}
	return out
}
