package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists orders. An order and its line snapshot are written in
// a single transaction; orders are never deleted, only payment-status
// transitioned.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, customerID, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	// UpdatePaymentStatus moves the order from one payment status to
	// another, recording an optional processor reference. A mismatch on the
	// current status yields domain.ErrInvalidTransition.
	UpdatePaymentStatus(ctx context.Context, id, from, to, ref string) error
	// SetPaymentRef stores the processor reference without touching status.
	SetPaymentRef(ctx context.Context, id, ref string) error
}
