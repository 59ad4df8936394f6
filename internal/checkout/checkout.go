// Package checkout turns the staged cart into a single order submission and
// manages the submission lifecycle.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"posterminal/internal/api"
	"posterminal/internal/domain"
	"posterminal/internal/notify"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("a checkout is already in flight")
	ErrPaymentMethod      = errors.New("payment method required")
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
)

type orderAPI interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest, idempotencyKey string) (*domain.Order, error)
}

type stagedCart interface {
	Lines() []domain.CartLine
	IsEmpty() bool
	Clear()
}

type catalogMarker interface {
	MarkStale()
}

// Orchestrator serializes checkout submissions. While one is in flight the
// checkout action is unavailable, which is the double-submission guard; the
// cart is cleared only after the backend accepts the order.
type Orchestrator struct {
	api      orderAPI
	cart     stagedCart
	catalog  catalogMarker
	notifier notify.Notifier
	logger   *log.Logger

	mu    sync.Mutex
	state State

	newKey func() string
}

func New(orderAPI orderAPI, cart stagedCart, catalog catalogMarker, notifier notify.Notifier, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Orchestrator{
		api:      orderAPI,
		cart:     cart,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
		newKey:   uuid.NewString,
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit sends the current cart as one order. On success the cart is cleared
// and the catalog marked stale (stock changed); on failure the cart is left
// intact so the cashier can retry. There is no automatic retry.
func (o *Orchestrator) Submit(ctx context.Context, paymentMethod string) (*domain.Order, error) {
	if paymentMethod == "" {
		return nil, ErrPaymentMethod
	}

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if o.cart.IsEmpty() {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}
	lines := o.cart.Lines()
	o.state = StateSubmitting
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.state = StateIdle
		o.mu.Unlock()
	}()

	req := api.CreateOrderRequest{
		PaymentMethod: paymentMethod,
		Source:        domain.OrderSourcePOS,
		Items:         make([]api.OrderItemRequest, 0, len(lines)),
	}
	for _, l := range lines {
		req.Items = append(req.Items, api.OrderItemRequest{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
		})
	}

	order, err := o.api.CreateOrder(ctx, req, o.newKey())
	if err != nil {
		o.logger.Printf("checkout: submission failed: %v", err)
		o.notifier.Error(errorMessage(err))
		return nil, err
	}

	// Single completion point: cart clearing and cache invalidation happen
	// here and nowhere else.
	o.cart.Clear()
	o.catalog.MarkStale()
	o.notifier.Success(fmt.Sprintf("order %s completed", order.ID))
	o.logger.Printf("checkout: order %s total=%d items=%d", order.ID, order.TotalCents, len(lines))
	return order, nil
}

// errorMessage prefers the backend's own message; anything else gets a
// generic line so raw transport errors do not reach the cashier.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "checkout failed, please try again"
}
