package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// OfflineProvider handles methods settled outside the platform: pix, bank
// transfer and pay on delivery. It issues a local reference and human
// instructions; the order stays awaiting payment until someone confirms it.
type OfflineProvider struct{}

func NewOffline() *OfflineProvider {
	return &OfflineProvider{}
}

func (p *OfflineProvider) CreateIntent(_ context.Context, o domain.Order) (*Intent, error) {
	ref := uuid.NewString()

	var instructions string
	switch o.PaymentMethod {
	case domain.PaymentMethodPix:
		instructions = fmt.Sprintf("Pay %s using the pix code %s. The order ships once the payment settles.", formatCents(o.TotalCents), ref)
	case domain.PaymentMethodBankTransfer:
		instructions = fmt.Sprintf("Transfer %s referencing order %s. Processing takes up to two business days.", formatCents(o.TotalCents), o.ID)
	case domain.PaymentMethodOnDelivery:
		instructions = fmt.Sprintf("Pay %s to the courier on delivery.", formatCents(o.TotalCents))
	default:
		return nil, fmt.Errorf("offline provider cannot handle method %q", o.PaymentMethod)
	}

	return &Intent{
		Reference:    ref,
		Instructions: instructions,
	}, nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
