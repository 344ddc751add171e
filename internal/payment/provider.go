// Package payment abstracts payment processors behind one provider
// interface. The checkout only needs success/failure and an opaque
// reference back.
package payment

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// Intent is the result of starting a payment. For card payments Reference
// and ClientSecret come from the processor; for out-of-band methods
// Instructions tell the shopper how to pay.
type Intent struct {
	Reference    string `json:"reference,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Provider starts a payment for an already-created order.
type Provider interface {
	CreateIntent(ctx context.Context, o domain.Order) (*Intent, error)
}

// Registry maps payment methods to providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(method string, p Provider) {
	r.providers[method] = p
}

// For returns the provider handling the given method.
func (r *Registry) For(method string) (Provider, error) {
	p, ok := r.providers[method]
	if !ok {
		return nil, fmt.Errorf("no payment provider for method %q", method)
	}
	return p, nil
}
