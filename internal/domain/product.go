package domain

import "time"

type Product struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	BasePriceCents int64     `json:"basePriceCents"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	Variants       []Variant `json:"variants,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Variant struct {
	ID                   string  `json:"id"`
	ProductID            string  `json:"productId"`
	SKU                  string  `json:"sku"`
	Size                 *string `json:"size,omitempty"`
	Color                *string `json:"color,omitempty"`
	PriceAdjustmentCents int64   `json:"priceAdjustmentCents"`
	StockQuantity        int     `json:"stockQuantity"`
	Active               bool    `json:"active"`
}

// UnitPriceCents is the effective price of this variant under the given product.
func (v Variant) UnitPriceCents(p Product) int64 {
	return p.BasePriceCents + v.PriceAdjustmentCents
}

// FindVariant returns the variant with the given id, or nil if absent.
func (p Product) FindVariant(variantID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}
