package order

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

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.IdempotencyKey != "" {
		existing, err := r.getByIdempotencyKey(ctx, in.IdempotencyKey)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			r.logger.Printf("order repo: replayed idempotency key %s -> order %s", in.IdempotencyKey, existing.ID)
			return existing, nil
		}
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock each variant row, verify live stock and price, then decrement.
	const lockQ = `
SELECT v.sku, v.stock_quantity, p.base_price_cents + v.price_adjustment_cents
FROM variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1
FOR UPDATE OF v
`
	const decQ = `UPDATE variants SET stock_quantity = stock_quantity - $2 WHERE id = $1`

	var total int64
	prices := make([]int64, len(in.Items))
	for i, item := range in.Items {
		var sku string
		var stock int
		var unitPrice int64
		err := tx.QueryRow(ctx, lockQ, item.VariantID).Scan(&sku, &stock, &unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			r.logger.Printf("order repo: lock variant %s error=%v", item.VariantID, err)
			return nil, err
		}
		if item.Quantity > stock {
			return nil, &domain.StockExceededError{
				SKU:       sku,
				Requested: item.Quantity,
				Available: stock,
			}
		}
		if _, err := tx.Exec(ctx, decQ, item.VariantID, item.Quantity); err != nil {
			r.logger.Printf("order repo: decrement variant %s error=%v", item.VariantID, err)
			return nil, err
		}
		prices[i] = unitPrice
		total += unitPrice * int64(item.Quantity)
	}

	const orderQ = `
INSERT INTO orders (payment_method, source, status, total_cents, idempotency_key)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
RETURNING id::text, created_at
`
	order := domain.Order{
		PaymentMethod: in.PaymentMethod,
		Source:        in.Source,
		Status:        domain.OrderStatusCompleted,
		TotalCents:    total,
	}
	err = tx.QueryRow(ctx, orderQ, in.PaymentMethod, in.Source, string(domain.OrderStatusCompleted), total, in.IdempotencyKey).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		r.logger.Printf("order repo: insert order error=%v", err)
		return nil, err
	}

	const itemQ = `
INSERT INTO order_items (order_id, variant_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id::text
`
	for i, item := range in.Items {
		oi := domain.OrderItem{
			OrderID:        order.ID,
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
			UnitPriceCents: prices[i],
		}
		if err := tx.QueryRow(ctx, itemQ, order.ID, item.VariantID, item.Quantity, prices[i]).Scan(&oi.ID); err != nil {
			r.logger.Printf("order repo: insert item variant=%s error=%v", item.VariantID, err)
			return nil, err
		}
		order.Items = append(order.Items, oi)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order %s total=%d items=%d", order.ID, total, len(order.Items))
	return &order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, payment_method, source, status, total_cents, created_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.PaymentMethod, &o.Source, &o.Status, &o.TotalCents, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	if err := r.attachItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) getByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	const q = `
SELECT id::text, payment_method, source, status, total_cents, created_at
FROM orders
WHERE idempotency_key = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, key).Scan(&o.ID, &o.PaymentMethod, &o.Source, &o.Status, &o.TotalCents, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, o *domain.Order) error {
	const q = `
SELECT id::text, order_id::text, variant_id::text, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
