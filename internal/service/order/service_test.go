package order

import (
	"context"
	"errors"
	"testing"

	"posterminal/internal/domain"
	orderrepo "posterminal/internal/repository/order"
)

type stubRepo struct {
	created   *domain.Order
	createErr error
	lastInput orderrepo.CreateOrderInput
	calls     int
}

func (s *stubRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	s.calls++
	s.lastInput = in
	return s.created, s.createErr
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.created, s.createErr
}

func TestCreateValidation(t *testing.T) {
	repo := &stubRepo{}
	svc := &Service{repo: repo}

	cases := []struct {
		name string
		in   CreateInput
		want string
	}{
		{"missing payment method", CreateInput{Items: []ItemInput{{VariantID: "v1", Quantity: 1}}}, "payment_method required"},
		{"no items", CreateInput{PaymentMethod: "cash"}, "items required"},
		{"blank variant", CreateInput{PaymentMethod: "cash", Items: []ItemInput{{VariantID: " ", Quantity: 1}}}, "variant_id required"},
		{"zero quantity", CreateInput{PaymentMethod: "cash", Items: []ItemInput{{VariantID: "v1", Quantity: 0}}}, "quantity must be positive"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.in)
		if err == nil || err.Error() != tc.want {
			t.Fatalf("%s: expected %q, got %v", tc.name, tc.want, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("invalid input must not reach the repo")
	}
}

func TestCreateDefaultsSourceToPOS(t *testing.T) {
	repo := &stubRepo{created: &domain.Order{ID: "o1"}}
	svc := &Service{repo: repo}

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentMethod: "cash",
		Items:         []ItemInput{{VariantID: "v1", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastInput.Source != domain.OrderSourcePOS {
		t.Fatalf("expected pos source, got %q", repo.lastInput.Source)
	}
	if len(repo.lastInput.Items) != 1 || repo.lastInput.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", repo.lastInput.Items)
	}
}

func TestCreatePassesThroughStockError(t *testing.T) {
	repo := &stubRepo{createErr: &domain.StockExceededError{SKU: "TSHIRT-M", Requested: 3, Available: 1}}
	svc := &Service{repo: repo}

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentMethod: "card",
		Items:         []ItemInput{{VariantID: "v1", Quantity: 3}},
	})
	var se *domain.StockExceededError
	if !errors.As(err, &se) {
		t.Fatalf("expected StockExceededError, got %v", err)
	}
}

func TestCreateForwardsIdempotencyKey(t *testing.T) {
	repo := &stubRepo{created: &domain.Order{ID: "o1"}}
	svc := &Service{repo: repo}

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentMethod:  "cash",
		Items:          []ItemInput{{VariantID: "v1", Quantity: 1}},
		IdempotencyKey: "key-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastInput.IdempotencyKey != "key-123" {
		t.Fatalf("idempotency key not forwarded: %+v", repo.lastInput)
	}
}
