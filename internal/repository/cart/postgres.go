package cart

import (
	"context"
	"errors"

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

func (r *postgresRepo) List(ctx context.Context, ownerID string) ([]domain.LineItem, error) {
	const q = `
SELECT id::text, owner_id, product_id::text, name, COALESCE(image_url, ''), size, color, quantity, unit_price_cents, created_at
FROM cart_lines
WHERE owner_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		r.logger.Error("cart repo: list", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.ProductID,
			&item.Name,
			&item.ImageURL,
			&item.Size,
			&item.Color,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("cart repo: list rows", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

// AddItem inserts the line or, when a line with the same
// (owner_id, product_id, size, color) already exists, atomically increments
// its quantity. The unique index on the natural key makes the upsert safe
// against two racing adds. The original unit price snapshot wins on conflict.
func (r *postgresRepo) AddItem(ctx context.Context, item domain.LineItem) (*domain.LineItem, error) {
	const q = `
INSERT INTO cart_lines (owner_id, product_id, name, image_url, size, color, quantity, unit_price_cents)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
ON CONFLICT (owner_id, product_id, size, color) DO UPDATE SET
    quantity = cart_lines.quantity + EXCLUDED.quantity
RETURNING id::text, name, COALESCE(image_url, ''), quantity, unit_price_cents, created_at
`
	out := item
	err := r.pool.QueryRow(ctx, q,
		item.OwnerID,
		item.ProductID,
		item.Name,
		item.ImageURL,
		item.Size,
		item.Color,
		item.Quantity,
		item.UnitPriceCents,
	).Scan(&out.ID, &out.Name, &out.ImageURL, &out.Quantity, &out.UnitPriceCents, &out.CreatedAt)
	if err != nil {
		r.logger.Error("cart repo: add item",
			zap.String("owner_id", item.OwnerID),
			zap.String("product_id", item.ProductID),
			zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, ownerID, id string, quantity int) error {
	// Postgres rejects a malformed uuid with an error rather than matching
	// zero rows, so validate before it reaches the query.
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	const q = `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND owner_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, quantity, id, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		r.logger.Error("cart repo: update quantity", zap.String("owner_id", ownerID), zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Remove deletes the line if present. Removing an absent id is a no-op.
func (r *postgresRepo) Remove(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	const q = `
DELETE FROM cart_lines
WHERE id = $1 AND owner_id = $2
`
	if _, err := r.pool.Exec(ctx, q, id, ownerID); err != nil {
		r.logger.Error("cart repo: remove", zap.String("owner_id", ownerID), zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, ownerID string) error {
	const q = `
DELETE FROM cart_lines
WHERE owner_id = $1
`
	if _, err := r.pool.Exec(ctx, q, ownerID); err != nil {
		r.logger.Error("cart repo: clear", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}
	return nil
}
