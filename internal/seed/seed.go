package seed

import (
	"context"
	"fmt"

	"posterminal/internal/domain"
	productrepo "posterminal/internal/repository/product"
)

func strPtr(v string) *string { return &v }

// Apply inserts a small demo catalog for manual testing. Idempotent via the
// repository's upsert.
func Apply(ctx context.Context, repo productrepo.Repository) error {
	products := []domain.Product{
		{
			Slug:           "classic-tee",
			Name:           "Classic Tee",
			Description:    "Soft cotton tee",
			BasePriceCents: 1999,
			Variants: []domain.Variant{
				{SKU: "TEE-BLK-S", Size: strPtr("S"), Color: strPtr("black"), StockQuantity: 12, Active: true},
				{SKU: "TEE-BLK-M", Size: strPtr("M"), Color: strPtr("black"), StockQuantity: 8, Active: true},
				{SKU: "TEE-BLK-L", Size: strPtr("L"), Color: strPtr("black"), PriceAdjustmentCents: 200, StockQuantity: 5, Active: true},
			},
		},
		{
			Slug:           "stoneware-mug",
			Name:           "Stoneware Mug",
			Description:    "Ceramic mug, 350ml",
			BasePriceCents: 1299,
			Variants: []domain.Variant{
				{SKU: "MUG-STD", StockQuantity: 40, Active: true},
				{SKU: "MUG-XL", Size: strPtr("XL"), PriceAdjustmentCents: 300, StockQuantity: 15, Active: true},
			},
		},
		{
			Slug:           "canvas-tote",
			Name:           "Canvas Tote",
			BasePriceCents: 2499,
			Variants: []domain.Variant{
				{SKU: "TOTE-NAT", Color: strPtr("natural"), StockQuantity: 20, Active: true},
				{SKU: "TOTE-NVY", Color: strPtr("navy"), StockQuantity: 0, Active: false},
			},
		},
	}

	for _, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}
	return nil
}
