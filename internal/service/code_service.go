package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"
)

// CodeService hands out vendor and category codes for the catalog screens.
type CodeService interface {
	NextVendorCode(ctx context.Context) (*dto.CodeResponse, error)
	NextCategoryCode(ctx context.Context, name string) (*dto.CodeResponse, error)
}

var ErrInvalidCategoryName = errors.New("category name must contain letters")

type codeService struct{ alloc sequence.Allocator }

func NewCodeService(alloc sequence.Allocator) CodeService { return &codeService{alloc: alloc} }

func (s *codeService) NextVendorCode(ctx context.Context) (*dto.CodeResponse, error) {
	seq, err := s.alloc.Next(ctx, sequence.VendorScope())
	if err != nil {
		return nil, fmt.Errorf("allocating vendor code: %w", err)
	}
	return &dto.CodeResponse{Code: sequence.FormatVendorCode(seq), Sequence: seq}, nil
}

func (s *codeService) NextCategoryCode(ctx context.Context, name string) (*dto.CodeResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidCategoryName
	}
	prefix := sequence.CategoryPrefix(name)
	seq, err := s.alloc.Next(ctx, sequence.CategoryScope(prefix))
	if err != nil {
		return nil, fmt.Errorf("allocating category code: %w", err)
	}
	return &dto.CodeResponse{Code: sequence.FormatCategoryCode(prefix, seq), Sequence: seq}, nil
}
