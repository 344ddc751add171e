package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func items(totals ...int64) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(totals))
	for _, cents := range totals {
		out = append(out, domain.LineItem{Quantity: 1, UnitPriceCents: cents})
	}
	return out
}

func TestShippingBreakpoint(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name         string
		subtotal     int64
		wantShipping int64
	}{
		{"just below threshold", 19899, FlatShippingFeeCents},
		{"exactly at threshold", 19900, 0},
		{"above threshold", 22000, 0},
		{"cheap cart", 100, FlatShippingFeeCents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Compute(items(tt.subtotal), 0)
			assert.Equal(t, tt.subtotal, got.SubtotalCents)
			assert.Equal(t, tt.wantShipping, got.ShippingCents)
			assert.Equal(t, tt.subtotal+tt.wantShipping, got.TotalCents)
		})
	}
}

func TestEmptyCartShipsFree(t *testing.T) {
	got := NewCalculator().Compute(nil, 0)
	assert.Equal(t, domain.PricingResult{}, got)
}

func TestTotalNeverNegative(t *testing.T) {
	got := NewCalculator().Compute(items(5000), 1000000)
	assert.Equal(t, int64(5000), got.SubtotalCents)
	assert.Equal(t, FlatShippingFeeCents, got.ShippingCents)
	assert.Equal(t, int64(0), got.TotalCents)
}

func TestNegativeDiscountIgnored(t *testing.T) {
	got := NewCalculator().Compute(items(19900), -500)
	assert.Equal(t, int64(0), got.DiscountCents)
	assert.Equal(t, int64(19900), got.TotalCents)
}

func TestSubtotalSumsQuantities(t *testing.T) {
	lines := []domain.LineItem{
		{Quantity: 2, UnitPriceCents: 5000},
		{Quantity: 1, UnitPriceCents: 12000},
	}
	got := NewCalculator().Compute(lines, 0)
	assert.Equal(t, int64(22000), got.SubtotalCents)
	assert.Equal(t, int64(0), got.ShippingCents)
	assert.Equal(t, int64(22000), got.TotalCents)
}

func TestCustomShippingRule(t *testing.T) {
	calc := NewCalculatorWith(10000, 500)
	got := calc.Compute(items(9999), 0)
	assert.Equal(t, int64(500), got.ShippingCents)

	got = calc.Compute(items(10000), 0)
	assert.Equal(t, int64(0), got.ShippingCents)
}

func TestMethodDiscountCents(t *testing.T) {
	assert.Equal(t, int64(0), MethodDiscountCents(22000, 0))
	assert.Equal(t, int64(1100), MethodDiscountCents(22000, 5))
	assert.Equal(t, int64(0), MethodDiscountCents(0, 5))
	// 333 * 10% = 33.3, rounds to 33
	assert.Equal(t, int64(33), MethodDiscountCents(333, 10))
	// 335 * 10% = 33.5, rounds half up to 34
	assert.Equal(t, int64(34), MethodDiscountCents(335, 10))
}
