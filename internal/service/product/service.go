package product

import (
	"context"

	"posterminal/internal/domain"
	productrepo "posterminal/internal/repository/product"
)

const maxPageSize = 500

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error) {
	return s.repo.GetVariantBySKU(ctx, sku)
}
