package importer

import (
	"context"
	"strings"
	"testing"

	"posterminal/internal/domain"
)

type stubWriter struct {
	upserted []domain.Product
	err      error
}

func (s *stubWriter) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.upserted = append(s.upserted, p)
	return &p, s.err
}

const sampleCSV = `slug,name,description,base_price_cents,image_url,sku,size,color,price_adjustment_cents,stock_quantity,active
classic-tee,Classic Tee,Soft cotton tee,1999,,TEE-BLK-S,S,black,0,12,true
classic-tee,Classic Tee,Soft cotton tee,1999,,TEE-BLK-L,L,black,200,5,true
stoneware-mug,Stoneware Mug,,1299,https://cdn.example.com/mug.jpg,MUG-STD,,,0,40,
`

func TestRunGroupsVariantsBySlug(t *testing.T) {
	w := &stubWriter{}
	imp := NewCSVImporter(strings.NewReader(sampleCSV), w)

	n, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 products imported, got %d", n)
	}

	tee := w.upserted[0]
	if tee.Slug != "classic-tee" || len(tee.Variants) != 2 {
		t.Fatalf("unexpected first product: %+v", tee)
	}
	if tee.Variants[1].SKU != "TEE-BLK-L" || tee.Variants[1].PriceAdjustmentCents != 200 {
		t.Fatalf("unexpected variant: %+v", tee.Variants[1])
	}

	mug := w.upserted[1]
	if mug.ImageURL == nil || *mug.ImageURL != "https://cdn.example.com/mug.jpg" {
		t.Fatalf("expected image url, got %+v", mug.ImageURL)
	}
	// Blank active column defaults to true.
	if !mug.Variants[0].Active {
		t.Fatalf("expected default-active variant: %+v", mug.Variants[0])
	}
}

func TestRunRejectsMissingColumns(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("slug,name\nx,y\n"), &stubWriter{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

func TestRunRejectsBlankSKU(t *testing.T) {
	csv := "slug,name,base_price_cents,sku\nclassic-tee,Classic Tee,1999, \n"
	imp := NewCSVImporter(strings.NewReader(csv), &stubWriter{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for blank sku")
	}
}

func TestRunRejectsNegativeStock(t *testing.T) {
	csv := "slug,name,base_price_cents,sku,stock_quantity\nclassic-tee,Classic Tee,1999,TEE-1,-4\n"
	imp := NewCSVImporter(strings.NewReader(csv), &stubWriter{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for negative stock")
	}
}
