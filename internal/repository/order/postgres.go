package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	const insertOrder = `
INSERT INTO orders (customer_id, status, payment_status, payment_method, payment_ref,
                    subtotal_cents, shipping_cents, discount_cents, total_cents, shipping_address)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)
RETURNING id::text, created_at
`
	out := o
	if err := tx.QueryRow(ctx, insertOrder,
		o.CustomerID,
		o.Status,
		o.PaymentStatus,
		o.PaymentMethod,
		o.PaymentRef,
		o.SubtotalCents,
		o.ShippingCents,
		o.DiscountCents,
		o.TotalCents,
		address,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Error("order repo: insert order", zap.String("customer_id", o.CustomerID), zap.Error(err))
		return nil, err
	}

	const insertLine = `
INSERT INTO order_lines (order_id, product_id, name, size, color, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text
`
	out.Lines = make([]domain.OrderLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		saved := line
		saved.OrderID = out.ID
		if err := tx.QueryRow(ctx, insertLine,
			out.ID,
			line.ProductID,
			line.Name,
			line.Size,
			line.Color,
			line.Quantity,
			line.UnitPriceCents,
			line.TotalCents,
		).Scan(&saved.ID); err != nil {
			r.logger.Error("order repo: insert line", zap.String("order_id", out.ID), zap.Error(err))
			return nil, err
		}
		out.Lines = append(out.Lines, saved)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

const orderColumns = `id::text, customer_id, status, payment_status, payment_method, COALESCE(payment_ref, ''),
       subtotal_cents, shipping_cents, discount_cents, total_cents, shipping_address, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, customerID, id string) (*domain.Order, error) {
	// A malformed uuid comes straight from the request path; treat it as an
	// absent order instead of letting Postgres raise a cast error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1 AND id = $2
`
	o, err := r.scanOrder(r.pool.QueryRow(ctx, q, customerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	lines, err := r.fetchLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		r.logger.Error("order repo: list", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) UpdatePaymentStatus(ctx context.Context, id, from, to, ref string) error {
	const q = `
UPDATE orders
SET payment_status = $1,
    payment_ref = COALESCE(NULLIF($2, ''), payment_ref)
WHERE id = $3 AND payment_status = $4
`
	cmd, err := r.pool.Exec(ctx, q, to, ref, id, from)
	if err != nil {
		r.logger.Error("order repo: update payment status", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

func (r *postgresRepo) SetPaymentRef(ctx context.Context, id, ref string) error {
	const q = `
UPDATE orders
SET payment_ref = $1
WHERE id = $2
`
	cmd, err := r.pool.Exec(ctx, q, ref, id)
	if err != nil {
		r.logger.Error("order repo: set payment ref", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresRepo) scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var address []byte
	if err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentRef,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.DiscountCents,
		&o.TotalCents,
		&address,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return &o, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, name, size, color, quantity, unit_price_cents, total_cents
FROM order_lines
WHERE order_id = $1
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.Name,
			&line.Size,
			&line.Color,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.TotalCents,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
