package product

import (
	"context"

	"posterminal/internal/domain"
)

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
