package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists one owner's cart lines. AddItem must consolidate
// concurrent adds of the same natural key into a single line whose quantity
// is the sum of both additions; two parallel adds must never produce
// duplicate lines.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, item domain.LineItem) (*domain.LineItem, error)
	UpdateQuantity(ctx context.Context, ownerID, id string, quantity int) error
	Remove(ctx context.Context, ownerID, id string) error
	Clear(ctx context.Context, ownerID string) error
}
