// Package api is the HTTP client for the point-of-sale backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"posterminal/internal/domain"
)

// Error is a non-2xx response from the backend, carrying the human-readable
// message from its error payload when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *log.Logger
}

func New(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// CreateOrderRequest is the order submission payload. Unit prices are
// deliberately absent; the backend prices authoritatively.
type CreateOrderRequest struct {
	PaymentMethod string             `json:"payment_method"`
	Source        string             `json:"source"`
	Items         []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type productResponse struct {
	Product domain.Product `json:"product"`
}

type skuResponse struct {
	Variant domain.Variant `json:"variant"`
	Product domain.Product `json:"product"`
}

type orderResponse struct {
	Order domain.Order `json:"order"`
}

// ListProducts fetches one catalog page.
func (c *Client) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var res productsResponse
	if err := c.get(ctx, "/pos/products?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return res.Products, nil
}

// GetProduct fetches a single product with its variants.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var res productResponse
	if err := c.get(ctx, "/pos/products/"+url.PathEscape(id), &res); err != nil {
		return nil, err
	}
	return &res.Product, nil
}

// GetVariantBySKU resolves a scanned code to a variant and its parent
// product. Returns domain.ErrNotFound when the code matches nothing.
func (c *Client) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error) {
	var res skuResponse
	if err := c.get(ctx, "/pos/products/variants/sku/"+url.PathEscape(sku), &res); err != nil {
		return nil, nil, err
	}
	return &res.Variant, &res.Product, nil
}

// CreateOrder submits a staged order. idempotencyKey deduplicates retries of
// the same submission on the backend.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (*domain.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pos/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	var res orderResponse
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}
	return &res.Order, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Printf("api: %s %s error=%v", req.Method, req.URL.Path, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
