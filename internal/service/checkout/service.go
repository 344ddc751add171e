// Package checkout turns a cart snapshot into an order and hands payment
// off to the configured provider.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
	cartsvc "storefront/internal/service/cart"
)

type Service struct {
	store              *cartsvc.Store
	orders             orderrepo.Repository
	payments           *payment.Registry
	calc               *pricing.Calculator
	pixDiscountPercent float64
	logger             *zap.Logger
}

func New(store *cartsvc.Store, orders orderrepo.Repository, payments *payment.Registry, calc *pricing.Calculator, pixDiscountPercent float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:              store,
		orders:             orders,
		payments:           payments,
		calc:               calc,
		pixDiscountPercent: pixDiscountPercent,
		logger:             logger,
	}
}

// PlaceOrderInput carries everything collected at checkout.
type PlaceOrderInput struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// PlaceOrderResult is the created order plus, when the provider call
// succeeded, the started payment.
type PlaceOrderResult struct {
	Order   *domain.Order   `json:"order"`
	Payment *payment.Intent `json:"payment,omitempty"`
}

// PlaceOrder recomputes pricing from the live cart (client-cached totals are
// never trusted), persists the order with its line snapshot, clears the
// cart, then starts the payment. Ordering of the failure modes matters:
//   - anything failing before Create leaves no order and an intact cart;
//   - Create failing leaves an intact cart so the shopper keeps their items;
//   - the payment provider failing after Create leaves the order awaiting
//     payment with the cart already cleared.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if !domain.KnownPaymentMethod(in.PaymentMethod) {
		return nil, domain.Validation("paymentMethod", "unsupported")
	}
	if err := validateAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	sess, err := s.store.Session(ctx, domain.Owner{ID: customerID, Kind: domain.OwnerCustomer})
	if err != nil {
		return nil, err
	}
	view, err := sess.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(view.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	var discount int64
	if in.PaymentMethod == domain.PaymentMethodPix {
		discount = pricing.MethodDiscountCents(view.Pricing.SubtotalCents, s.pixDiscountPercent)
	}
	priced := s.calc.Compute(view.Items, discount)

	lines := make([]domain.OrderLine, 0, len(view.Items))
	for _, item := range view.Items {
		lines = append(lines, domain.OrderLine{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Size:           item.Size,
			Color:          item.Color,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents(),
		})
	}

	order, err := s.orders.Create(ctx, domain.Order{
		CustomerID:      customerID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusAwaiting,
		PaymentMethod:   in.PaymentMethod,
		SubtotalCents:   priced.SubtotalCents,
		ShippingCents:   priced.ShippingCents,
		DiscountCents:   priced.DiscountCents,
		TotalCents:      priced.TotalCents,
		ShippingAddress: in.ShippingAddress,
		Lines:           lines,
	})
	if err != nil {
		// No order was created, so the cart stays untouched.
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := sess.Clear(ctx); err != nil {
		// The order exists; a lingering cart is an annoyance, not a loss.
		s.logger.Error("checkout: clearing cart after order creation failed",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	result := &PlaceOrderResult{Order: order}

	provider, err := s.payments.For(in.PaymentMethod)
	if err != nil {
		s.logger.Error("checkout: no provider", zap.String("method", in.PaymentMethod), zap.Error(err))
		return result, nil
	}
	intent, err := provider.CreateIntent(ctx, *order)
	if err != nil {
		s.logger.Warn("checkout: payment intent failed, order stays awaiting payment",
			zap.String("order_id", order.ID), zap.Error(err))
		return result, nil
	}

	if err := s.orders.SetPaymentRef(ctx, order.ID, intent.Reference); err != nil {
		s.logger.Error("checkout: storing payment ref failed",
			zap.String("order_id", order.ID), zap.Error(err))
	} else {
		order.PaymentRef = intent.Reference
	}
	result.Payment = intent
	return result, nil
}

// ConfirmPayment transitions the order from awaiting_payment to paid after
// the processor reports success.
func (s *Service) ConfirmPayment(ctx context.Context, customerID, orderID, reference string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if _, err := s.orders.GetByID(ctx, customerID, orderID); err != nil {
		return nil, err
	}
	if err := s.orders.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusAwaiting, domain.PaymentStatusPaid, reference); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, customerID, orderID)
}

// ListOrders returns the customer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.orders.ListByCustomer(ctx, customerID)
}

// GetOrder returns one of the customer's orders with its lines.
func (s *Service) GetOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.orders.GetByID(ctx, customerID, orderID)
}

func validateAddress(a domain.ShippingAddress) error {
	switch {
	case strings.TrimSpace(a.StreetName) == "":
		return domain.Validation("shippingAddress.streetName", "required")
	case strings.TrimSpace(a.City) == "":
		return domain.Validation("shippingAddress.city", "required")
	case strings.TrimSpace(a.PostalCode) == "":
		return domain.Validation("shippingAddress.postalCode", "required")
	case strings.TrimSpace(a.Country) == "":
		return domain.Validation("shippingAddress.country", "required")
	}
	return nil
}
