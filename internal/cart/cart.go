// Package cart holds the staged point-of-sale order before submission.
package cart

import (
	"errors"

	"posterminal/internal/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrVariantInactive = errors.New("variant is not active")
)

// Cart is the in-memory staged order. Line order follows insertion order.
// All access is expected from the terminal's event loop goroutine; mutations
// are serialized by that single-threaded model.
type Cart struct {
	lines []domain.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Add stages quantity units of the variant. When a line for the variant
// already exists the quantities merge; the effective request (existing plus
// new) is checked against the variant's last observed stock. A request over
// the ceiling is rejected whole, leaving the cart unchanged rather than
// clamped.
func (c *Cart) Add(variant domain.Variant, product domain.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !variant.Active {
		return ErrVariantInactive
	}

	inCart := 0
	idx := -1
	for i := range c.lines {
		if c.lines[i].VariantID == variant.ID {
			inCart = c.lines[i].Quantity
			idx = i
			break
		}
	}

	if inCart+quantity > variant.StockQuantity {
		return &domain.StockExceededError{
			SKU:       variant.SKU,
			Requested: quantity,
			InCart:    inCart,
			Available: variant.StockQuantity,
		}
	}

	if idx >= 0 {
		c.lines[idx].Quantity += quantity
		return nil
	}

	c.lines = append(c.lines, domain.CartLine{
		VariantID:      variant.ID,
		ProductID:      product.ID,
		DisplayName:    product.Name,
		SKU:            variant.SKU,
		Size:           variant.Size,
		Color:          variant.Color,
		UnitPriceCents: variant.UnitPriceCents(product),
		Quantity:       quantity,
	})
	return nil
}

// Remove deletes the line for the variant. Absent lines are a silent no-op.
func (c *Cart) Remove(variantID string) {
	for i := range c.lines {
		if c.lines[i].VariantID == variantID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the staged lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalCents recomputes the cart total from its lines on every call; the
// total is never stored, so it cannot drift.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.LineTotalCents()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Quantity returns the staged quantity for a variant, zero if absent.
func (c *Cart) Quantity(variantID string) int {
	for _, l := range c.lines {
		if l.VariantID == variantID {
			return l.Quantity
		}
	}
	return 0
}

// ClampQuantity bounds a pre-add quantity selection to what the variant can
// supply. Used by quantity spinners before Add is invoked.
func ClampQuantity(variant domain.Variant, requested int) int {
	if requested < 1 {
		return 1
	}
	if requested > variant.StockQuantity {
		return variant.StockQuantity
	}
	return requested
}
