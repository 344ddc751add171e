// Package cartmerge reconciles a guest cart into a newly authenticated
// customer's cart. It runs once per guest-to-customer transition.
package cartmerge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/guestcart"
	cartsvc "storefront/internal/service/cart"
)

// ErrCartUnavailable means the customer's durable cart could not be reached,
// so the merge did not run. The guest blob is left intact for a later retry.
var ErrCartUnavailable = errors.New("customer cart unavailable")

// Service replays guest line items through the cart store and then clears
// the guest blob so the merge can never double-apply.
type Service struct {
	guest  guestcart.Repository
	store  *cartsvc.Store
	logger *zap.Logger
}

func New(guest guestcart.Repository, store *cartsvc.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{guest: guest, store: store, logger: logger}
}

// Result summarizes one merge run.
type Result struct {
	Merged int `json:"merged"`
	Failed int `json:"failed"`
}

// Merge replays every guest item through AddItem against the customer's
// cart, so natural-key consolidation applies and prices are re-snapshotted
// from the catalog. One item failing does not abort the rest; failures are
// logged and counted. The guest blob is cleared only after the whole attempt
// completes, which makes a retried merge with the now-empty guest cart a
// harmless no-op.
func (s *Service) Merge(ctx context.Context, anonymousID, customerID string) (Result, error) {
	items, err := s.guest.Get(ctx, anonymousID)
	if err != nil {
		return Result{}, fmt.Errorf("load guest cart: %w", err)
	}
	if len(items) == 0 {
		return Result{}, nil
	}

	sess, err := s.store.Session(ctx, domain.Owner{ID: customerID, Kind: domain.OwnerCustomer})
	if err != nil {
		return Result{}, fmt.Errorf("open customer cart: %w", err)
	}
	if sess.Fallback() {
		// Replaying into a degraded session would park the items in a guest
		// blob keyed by the customer id, where no recovered session ever
		// looks. Abort and keep the guest blob so the next login retries.
		return Result{}, fmt.Errorf("open customer cart: %w", ErrCartUnavailable)
	}

	var res Result
	for _, item := range items {
		_, err := sess.AddItem(ctx, cartsvc.AddItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
		if err != nil {
			s.logger.Warn("cart merge: item failed",
				zap.String("anonymous_id", anonymousID),
				zap.String("customer_id", customerID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			res.Failed++
			continue
		}
		res.Merged++
	}

	if err := s.guest.Delete(ctx, anonymousID); err != nil {
		// The merge itself succeeded; a stale guest blob just means a later
		// login may re-add items. Surface it so the caller can log loudly.
		return res, fmt.Errorf("clear guest cart: %w", err)
	}

	s.logger.Info("cart merge: done",
		zap.String("anonymous_id", anonymousID),
		zap.String("customer_id", customerID),
		zap.Int("merged", res.Merged),
		zap.Int("failed", res.Failed))
	return res, nil
}
