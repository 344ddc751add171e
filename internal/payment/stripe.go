package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"

	"storefront/internal/domain"
)

// StripeProvider captures card payments through Stripe PaymentIntents.
// The order is created before the intent; a failed intent leaves the order
// awaiting payment.
type StripeProvider struct {
	currency string
}

func NewStripe(apiKey, currency string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{currency: currency}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, o domain.Order) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(o.TotalCents),
		Currency: stripe.String(p.currency),
	}
	params.AddMetadata("order_id", o.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe payment intent: %w", err)
	}

	return &Intent{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}
