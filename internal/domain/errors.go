package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// StockExceededError reports an add or order that would exceed the known
// stock for a variant. InCart is the quantity already staged for the variant
// before the rejected request.
type StockExceededError struct {
	SKU       string
	Requested int
	InCart    int
	Available int
}

func (e *StockExceededError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("insufficient stock for %s: requested %d with %d already in cart, only %d available", e.SKU, e.Requested, e.InCart, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, only %d available", e.SKU, e.Requested, e.Available)
}

// IsStockExceeded reports whether err wraps a StockExceededError.
func IsStockExceeded(err error) bool {
	var se *StockExceededError
	return errors.As(err, &se)
}
