package order

import (
	"context"

	"posterminal/internal/domain"
)

type CreateOrderInput struct {
	PaymentMethod  string
	Source         string
	IdempotencyKey string
	Items          []ItemInput
}

type ItemInput struct {
	VariantID string
	Quantity  int
}

type Repository interface {
	// Create persists the order, decrementing stock transactionally. The
	// stock check here is authoritative: a request exceeding live stock is
	// rejected whole, regardless of what the client believed.
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
