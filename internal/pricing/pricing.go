// Package pricing turns a set of cart line items into a money breakdown.
// All functions are pure: no I/O, no failure modes, totals clamped at zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Default shipping rule: one breakpoint, no tiers.
const (
	FreeShippingThresholdCents int64 = 19900
	FlatShippingFeeCents       int64 = 1990
)

// Calculator computes PricingResults with a configurable shipping rule.
type Calculator struct {
	freeShippingThresholdCents int64
	flatShippingFeeCents       int64
}

// NewCalculator returns a Calculator with the default shipping rule.
func NewCalculator() *Calculator {
	return NewCalculatorWith(FreeShippingThresholdCents, FlatShippingFeeCents)
}

// NewCalculatorWith returns a Calculator with an explicit threshold and fee.
func NewCalculatorWith(thresholdCents, feeCents int64) *Calculator {
	return &Calculator{
		freeShippingThresholdCents: thresholdCents,
		flatShippingFeeCents:       feeCents,
	}
}

// Compute derives subtotal, shipping, discount and total from items.
// An empty cart ships for free: the flat fee only applies once there is
// something to ship. The total never goes below zero, however large the
// discount.
func (c *Calculator) Compute(items []domain.LineItem, discountCents int64) domain.PricingResult {
	var subtotal int64
	for _, item := range items {
		subtotal += item.TotalCents()
	}

	var shipping int64
	if len(items) > 0 && subtotal < c.freeShippingThresholdCents {
		shipping = c.flatShippingFeeCents
	}

	if discountCents < 0 {
		discountCents = 0
	}
	total := subtotal + shipping - discountCents
	if total < 0 {
		total = 0
	}

	return domain.PricingResult{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		DiscountCents: discountCents,
		TotalCents:    total,
	}
}

// MethodDiscountCents converts a percentage promotion (for example a pix
// discount) into cents off the given subtotal, rounding half up.
func MethodDiscountCents(subtotalCents int64, percent float64) int64 {
	if percent <= 0 || subtotalCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
