package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"posterminal/internal/domain"
	ordersvc "posterminal/internal/service/order"
)

type stubProductSvc struct {
	products   []domain.Product
	product    *domain.Product
	variant    *domain.Variant
	err        error
	lastLimit  int
	lastOffset int
	lastSKU    string
}

func (s *stubProductSvc) List(_ context.Context, limit, offset int) ([]domain.Product, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	return s.products, s.err
}

func (s *stubProductSvc) Get(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductSvc) GetVariantBySKU(_ context.Context, sku string) (*domain.Variant, *domain.Product, error) {
	s.lastSKU = sku
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.variant, s.product, nil
}

type stubOrderSvc struct {
	order   *domain.Order
	err     error
	lastIn  ordersvc.CreateInput
	created int
}

func (s *stubOrderSvc) Create(_ context.Context, in ordersvc.CreateInput) (*domain.Order, error) {
	s.created++
	s.lastIn = in
	return s.order, s.err
}

func (s *stubOrderSvc) Get(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func newTestRouter(products *stubProductSvc, orders *stubOrderSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(os.Stdout, "[test] ", 0)
	return buildRouter(logger, nil, Deps{ProductSvc: products, OrderSvc: orders}, []string{"*"})
}

func TestListProducts(t *testing.T) {
	products := &stubProductSvc{products: []domain.Product{{ID: "p1", Name: "Mug"}}}
	router := newTestRouter(products, &stubOrderSvc{})

	req := httptest.NewRequest(http.MethodGet, "/pos/products?limit=25&offset=50", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if products.lastLimit != 25 || products.lastOffset != 50 {
		t.Fatalf("pagination not forwarded: %d/%d", products.lastLimit, products.lastOffset)
	}
	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].ID != "p1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestVariantBySKU(t *testing.T) {
	products := &stubProductSvc{
		variant: &domain.Variant{ID: "v1", SKU: "MUG-STD"},
		product: &domain.Product{ID: "p1", Name: "Mug"},
	}
	router := newTestRouter(products, &stubOrderSvc{})

	req := httptest.NewRequest(http.MethodGet, "/pos/products/variants/sku/MUG-STD", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if products.lastSKU != "MUG-STD" {
		t.Fatalf("sku not forwarded: %q", products.lastSKU)
	}
}

func TestVariantBySKUNotFound(t *testing.T) {
	products := &stubProductSvc{err: domain.ErrNotFound}
	router := newTestRouter(products, &stubOrderSvc{})

	req := httptest.NewRequest(http.MethodGet, "/pos/products/variants/sku/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetProductByIDRouteCoexistsWithSKURoute(t *testing.T) {
	products := &stubProductSvc{product: &domain.Product{ID: "p1"}}
	router := newTestRouter(products, &stubOrderSvc{})

	req := httptest.NewRequest(http.MethodGet, "/pos/products/p1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateOrder(t *testing.T) {
	orders := &stubOrderSvc{order: &domain.Order{ID: "o1", TotalCents: 4297}}
	router := newTestRouter(&stubProductSvc{}, orders)

	body := `{"payment_method":"cash","source":"pos","items":[{"variant_id":"vA","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/pos/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if orders.lastIn.IdempotencyKey != "key-1" {
		t.Fatalf("idempotency key not forwarded: %+v", orders.lastIn)
	}
	if len(orders.lastIn.Items) != 1 || orders.lastIn.Items[0].VariantID != "vA" {
		t.Fatalf("unexpected items: %+v", orders.lastIn.Items)
	}
}

func TestCreateOrderStockConflict(t *testing.T) {
	orders := &stubOrderSvc{err: &domain.StockExceededError{SKU: "MUG-STD", Requested: 5, Available: 2}}
	router := newTestRouter(&stubProductSvc{}, orders)

	body := `{"payment_method":"cash","items":[{"variant_id":"vA","quantity":5}]}`
	req := httptest.NewRequest(http.MethodPost, "/pos/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(payload.Error, "MUG-STD") || !strings.Contains(payload.Error, "2 available") {
		t.Fatalf("expected figures in message, got %q", payload.Error)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	orders := &stubOrderSvc{err: errors.New("boom")}
	router := newTestRouter(&stubProductSvc{}, orders)

	req := httptest.NewRequest(http.MethodPost, "/pos/orders", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
	if orders.created != 0 {
		t.Fatalf("malformed body must not reach the service")
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	orders := &stubOrderSvc{err: errors.New("pq: connection refused")}
	router := newTestRouter(&stubProductSvc{}, orders)

	body := `{"payment_method":"cash","items":[{"variant_id":"vA","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/pos/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}
