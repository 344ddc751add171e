package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repository/guestcart"
)

// guestBackend keeps a guest's cart as a single serialized blob. Every
// mutation runs through the blob store's atomic Update so two concurrent
// requests for the same guest cannot interleave a read-modify-write and
// duplicate a line or lose an increment. Line ids are generated locally
// since there is no database to assign them.
type guestBackend struct {
	blobs guestcart.Repository
}

// NewGuestBackend returns a Backend over a guest cart blob store.
func NewGuestBackend(blobs guestcart.Repository) Backend {
	return &guestBackend{blobs: blobs}
}

func (b *guestBackend) List(ctx context.Context, ownerID string) ([]domain.LineItem, error) {
	return b.blobs.Get(ctx, ownerID)
}

func (b *guestBackend) AddItem(ctx context.Context, item domain.LineItem) (*domain.LineItem, error) {
	var saved domain.LineItem
	err := b.blobs.Update(ctx, item.OwnerID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		for i := range items {
			if items[i].Key() == item.Key() {
				items[i].Quantity += item.Quantity
				saved = items[i]
				return items, nil
			}
		}
		line := item
		line.ID = uuid.NewString()
		line.CreatedAt = time.Now().UTC()
		saved = line
		return append(items, line), nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (b *guestBackend) UpdateQuantity(ctx context.Context, ownerID, id string, quantity int) error {
	return b.blobs.Update(ctx, ownerID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
				return items, nil
			}
		}
		return nil, domain.ErrNotFound
	})
}

func (b *guestBackend) Remove(ctx context.Context, ownerID, id string) error {
	return b.blobs.Update(ctx, ownerID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		kept := items[:0]
		for _, item := range items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
}

func (b *guestBackend) Clear(ctx context.Context, ownerID string) error {
	return b.blobs.Delete(ctx, ownerID)
}
