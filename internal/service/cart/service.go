// Package cart implements the cart store: the single source of truth for a
// shopper's cart, behind one interface regardless of whether the items live
// in Postgres (customers) or in a Redis blob (guests).
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// Backend persists one owner's cart lines. Add must consolidate by natural
// key: adding an item whose (productId, size, color) already exists in the
// owner's cart increments the existing line instead of creating a second one.
type Backend interface {
	List(ctx context.Context, ownerID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, item domain.LineItem) (*domain.LineItem, error)
	UpdateQuantity(ctx context.Context, ownerID, id string, quantity int) error
	Remove(ctx context.Context, ownerID, id string) error
	Clear(ctx context.Context, ownerID string) error
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Store hands out per-shopper sessions bound to the right backend.
type Store struct {
	remote  Backend
	guest   Backend
	catalog catalog
	calc    *pricing.Calculator
	logger  *zap.Logger
}

func New(remote, guest Backend, catalog catalog, calc *pricing.Calculator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		remote:  remote,
		guest:   guest,
		catalog: catalog,
		calc:    calc,
		logger:  logger,
	}
}

// Session binds an owner to a backend for the rest of their session.
// Customers get the remote backend; if the initial remote fetch fails the
// session degrades to the guest backend so the shopper can keep working.
// The fallback decision happens here, once, never per operation.
type Session struct {
	store    *Store
	owner    domain.Owner
	backend  Backend
	fallback bool
}

func (s *Store) Session(ctx context.Context, owner domain.Owner) (*Session, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return nil, domain.Validation("owner", "required")
	}

	sess := &Session{store: s, owner: owner, backend: s.guest}
	if owner.Kind == domain.OwnerCustomer {
		sess.backend = s.remote
		if _, err := s.remote.List(ctx, owner.ID); err != nil {
			s.logger.Warn("cart store: remote backend unreachable, falling back to guest mode",
				zap.String("owner_id", owner.ID),
				zap.Error(err))
			sess.backend = s.guest
			sess.fallback = true
		}
	}

	return sess, nil
}

// Owner returns the session's owner.
func (s *Session) Owner() domain.Owner {
	return s.owner
}

// Fallback reports whether a customer session degraded to the guest backend
// because the remote cart was unreachable. Callers that must write to the
// durable cart, such as the login merge, check this before proceeding.
func (s *Session) Fallback() bool {
	return s.fallback
}

// AddItemInput carries one add request. Quantity must be at least 1.
type AddItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// AddItem snapshots the product's current price, name and image from the
// catalog and adds the line, consolidating by natural key.
func (s *Session) AddItem(ctx context.Context, in AddItemInput) (*domain.LineItem, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.Validation("productId", "required")
	}
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.store.catalog.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", in.ProductID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch product: %w", err)
	}

	item, err := s.backend.AddItem(ctx, domain.LineItem{
		OwnerID:        s.owner.ID,
		ProductID:      product.ID,
		Name:           product.Name,
		ImageURL:       product.ImageURL,
		Size:           strings.TrimSpace(in.Size),
		Color:          strings.TrimSpace(in.Color),
		Quantity:       in.Quantity,
		UnitPriceCents: product.PriceCents,
	})
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes the line. Removing an id that is not in the cart is a
// no-op, not an error.
func (s *Session) RemoveItem(ctx context.Context, id string) error {
	if err := s.backend.Remove(ctx, s.owner.ID, id); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// UpdateQuantity replaces the line's quantity. Quantities below 1 are
// rejected before any backend call; deleting via quantity zero is
// disallowed, callers must use RemoveItem.
func (s *Session) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if err := s.backend.UpdateQuantity(ctx, s.owner.ID, id, quantity); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update quantity: %w", err)
	}
	return nil
}

// CartView is a snapshot of the cart plus its freshly computed pricing.
type CartView struct {
	Items   []domain.LineItem    `json:"items"`
	Pricing domain.PricingResult `json:"pricing"`
}

// List returns the current items with pricing recomputed from them. Pricing
// is never cached, so it cannot desync from the cart contents.
func (s *Session) List(ctx context.Context) (*CartView, error) {
	items, err := s.backend.List(ctx, s.owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	return &CartView{
		Items:   items,
		Pricing: s.store.calc.Compute(items, 0),
	}, nil
}

// Clear removes every line for the owner.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx, s.owner.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
