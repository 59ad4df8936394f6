package product

import (
	"context"
	"errors"
	"io"
	"log"

	"posterminal/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), base_price_cents, image_url, created_at
FROM products
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.BasePriceCents, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}

	if err := r.attachVariants(ctx, result); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: list limit=%d offset=%d count=%d", limit, offset, len(result))
	return result, nil
}

func (r *postgresRepo) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	const q = `
SELECT id::text, product_id::text, sku, size, color, price_adjustment_cents, stock_quantity, active
FROM variants
WHERE product_id = ANY($1)
ORDER BY sku
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: variants error=%v", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.PriceAdjustmentCents, &v.StockQuantity, &v.Active); err != nil {
			return err
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), base_price_cents, image_url, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.BasePriceCents, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}

	products := []domain.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepo) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error) {
	const q = `
SELECT v.id::text, v.product_id::text, v.sku, v.size, v.color, v.price_adjustment_cents, v.stock_quantity, v.active,
       p.id::text, p.slug, p.name, COALESCE(p.description, ''), p.base_price_cents, p.image_url, p.created_at
FROM variants v
JOIN products p ON p.id = v.product_id
WHERE v.sku = $1
`
	var v domain.Variant
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, sku).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.PriceAdjustmentCents, &v.StockQuantity, &v.Active,
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.BasePriceCents, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: sku=%s not found", sku)
			return nil, nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: sku=%s error=%v", sku, err)
		return nil, nil, err
	}
	return &v, &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, name, description, base_price_cents, image_url)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    base_price_cents = EXCLUDED.base_price_cents,
    image_url = EXCLUDED.image_url
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q, product.Slug, product.Name, product.Description, product.BasePriceCents, product.ImageURL).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", product.Slug, err)
		return nil, err
	}

	const vq = `
INSERT INTO variants (product_id, sku, size, color, price_adjustment_cents, stock_quantity, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (sku) DO UPDATE SET
    size = EXCLUDED.size,
    color = EXCLUDED.color,
    price_adjustment_cents = EXCLUDED.price_adjustment_cents,
    stock_quantity = EXCLUDED.stock_quantity,
    active = EXCLUDED.active
RETURNING id::text
`
	for i, v := range product.Variants {
		var id string
		err := r.pool.QueryRow(ctx, vq, res.ID, v.SKU, v.Size, v.Color, v.PriceAdjustmentCents, v.StockQuantity, v.Active).Scan(&id)
		if err != nil {
			r.logger.Printf("product repo: upsert variant sku=%s error=%v", v.SKU, err)
			return nil, err
		}
		res.Variants[i].ID = id
		res.Variants[i].ProductID = res.ID
	}
	r.logger.Printf("product repo: upsert slug=%s variants=%d", res.Slug, len(res.Variants))
	return &res, nil
}
