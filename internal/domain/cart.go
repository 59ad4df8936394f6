package domain

// CartLine is one staged line in the point-of-sale cart. VariantID is the
// unique key within a cart; adding the same variant again merges quantities.
type CartLine struct {
	VariantID      string  `json:"variantId"`
	ProductID      string  `json:"productId"`
	DisplayName    string  `json:"displayName"`
	SKU            string  `json:"sku"`
	Size           *string `json:"size,omitempty"`
	Color          *string `json:"color,omitempty"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	Quantity       int     `json:"quantity"`
}

// LineTotalCents is the extended price of the line.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
