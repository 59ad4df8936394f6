package order

import (
	"context"
	"strings"

	"posterminal/internal/domain"
	orderrepo "posterminal/internal/repository/order"
)

// ValidationError marks input the caller can fix, as opposed to backend
// failures.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) error { return &ValidationError{msg: msg} }

type Service struct {
	repo orderRepo
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	PaymentMethod  string      `json:"payment_method"`
	Source         string      `json:"source"`
	Items          []ItemInput `json:"items"`
	IdempotencyKey string      `json:"-"`
}

type ItemInput struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, invalid("payment_method required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("items required")
	}
	repoIn := orderrepo.CreateOrderInput{
		PaymentMethod:  in.PaymentMethod,
		Source:         in.Source,
		IdempotencyKey: in.IdempotencyKey,
	}
	if repoIn.Source == "" {
		repoIn.Source = domain.OrderSourcePOS
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.VariantID) == "" {
			return nil, invalid("variant_id required")
		}
		if item.Quantity <= 0 {
			return nil, invalid("quantity must be positive")
		}
		repoIn.Items = append(repoIn.Items, orderrepo.ItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return s.repo.Create(ctx, repoIn)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}
