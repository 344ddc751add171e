package guestcart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores a guest's whole cart as one serialized blob keyed by the
// anonymous owner id. Every mutation rewrites the full blob (write-through).
type Repository interface {
	// Get returns the stored items, or an empty slice when no cart exists.
	Get(ctx context.Context, ownerID string) ([]domain.LineItem, error)
	Set(ctx context.Context, ownerID string, items []domain.LineItem) error
	// Update applies fn to the stored items and writes the result back as
	// one atomic step. Two concurrent updates to the same owner must not
	// interleave; a lost increment or duplicated line is a contract
	// violation. fn returning an error aborts the write.
	Update(ctx context.Context, ownerID string, fn func(items []domain.LineItem) ([]domain.LineItem, error)) error
	Delete(ctx context.Context, ownerID string) error
}
