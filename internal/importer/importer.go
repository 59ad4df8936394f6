package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"posterminal/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog exports and upserts products with their
// variants. Consecutive rows sharing a slug belong to one product.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses CSV rows and upserts products grouped by slug. It returns the
// number of products written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"slug", "name", "base_price_cents", "sku"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing required column %q", required)
		}
	}

	var (
		current  *domain.Product
		imported int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if _, err := i.productRepo.Upsert(ctx, *current); err != nil {
			return fmt.Errorf("upsert product %s: %w", current.Slug, err)
		}
		imported++
		current = nil
		return nil
	}

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read line %d: %w", line, err)
		}

		slug := strings.TrimSpace(field(record, index, "slug"))
		if slug == "" {
			return imported, fmt.Errorf("line %d: slug required", line)
		}

		if current == nil || current.Slug != slug {
			if err := flush(); err != nil {
				return imported, err
			}
			cents, err := parseCents(field(record, index, "base_price_cents"))
			if err != nil {
				return imported, fmt.Errorf("line %d: base_price_cents: %w", line, err)
			}
			current = &domain.Product{
				Slug:           slug,
				Name:           strings.TrimSpace(field(record, index, "name")),
				Description:    strings.TrimSpace(field(record, index, "description")),
				BasePriceCents: cents,
				ImageURL:       optional(field(record, index, "image_url")),
			}
		}

		variant, err := parseVariant(record, index, line)
		if err != nil {
			return imported, err
		}
		current.Variants = append(current.Variants, variant)
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func parseVariant(record []string, index map[string]int, line int) (domain.Variant, error) {
	sku := strings.TrimSpace(field(record, index, "sku"))
	if sku == "" {
		return domain.Variant{}, fmt.Errorf("line %d: sku required", line)
	}

	adjustment, err := parseCents(field(record, index, "price_adjustment_cents"))
	if err != nil {
		return domain.Variant{}, fmt.Errorf("line %d: price_adjustment_cents: %w", line, err)
	}

	stock := 0
	if raw := strings.TrimSpace(field(record, index, "stock_quantity")); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return domain.Variant{}, fmt.Errorf("line %d: invalid stock_quantity %q", line, raw)
		}
	}

	active := true
	if raw := strings.TrimSpace(field(record, index, "active")); raw != "" {
		active, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.Variant{}, fmt.Errorf("line %d: invalid active %q", line, raw)
		}
	}

	return domain.Variant{
		SKU:                  sku,
		Size:                 optional(field(record, index, "size")),
		Color:                optional(field(record, index, "color")),
		PriceAdjustmentCents: adjustment,
		StockQuantity:        stock,
		Active:               active,
	}, nil
}

func parseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func optional(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
