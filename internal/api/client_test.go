package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"posterminal/internal/domain"
)

func TestListProductsPagination(t *testing.T) {
	var gotLimit, gotOffset string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pos/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotLimit = r.URL.Query().Get("limit")
		gotOffset = r.URL.Query().Get("offset")
		json.NewEncoder(w).Encode(map[string]any{
			"products": []domain.Product{{ID: "p1", Name: "Mug", BasePriceCents: 1299}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	products, err := c.ListProducts(context.Background(), 100, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != "100" || gotOffset != "200" {
		t.Fatalf("expected limit/offset forwarded, got %s/%s", gotLimit, gotOffset)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestGetVariantBySKUNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "variant not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, _, err := c.GetVariantBySKU(context.Background(), "NOPE-123")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateOrderSendsPayloadWithoutPrices(t *testing.T) {
	var body map[string]any
	var idemKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pos/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		idemKey = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"order": domain.Order{ID: "o1", TotalCents: 4297}})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	order, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		PaymentMethod: "cash",
		Source:        domain.OrderSourcePOS,
		Items: []OrderItemRequest{
			{VariantID: "vA", Quantity: 2},
			{VariantID: "vB", Quantity: 1},
		},
	}, "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "o1" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if idemKey != "key-1" {
		t.Fatalf("expected idempotency key header, got %q", idemKey)
	}

	items, ok := body["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("unexpected items: %+v", body["items"])
	}
	first := items[0].(map[string]any)
	if first["variant_id"] != "vA" || first["quantity"] != float64(2) {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if _, present := first["unit_price_cents"]; present {
		t.Fatalf("client must not send prices: %+v", first)
	}
	if body["source"] != "pos" {
		t.Fatalf("expected pos source, got %v", body["source"])
	}
}

func TestBackendErrorMessageSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "insufficient stock for SKU-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{PaymentMethod: "cash", Source: "pos"}, "")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "insufficient stock for SKU-1" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}
