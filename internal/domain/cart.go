package domain

import "time"

// OwnerKind distinguishes guest carts from customer carts.
type OwnerKind string

const (
	OwnerGuest    OwnerKind = "guest"
	OwnerCustomer OwnerKind = "customer"
)

// Owner identifies whose cart an operation targets. Every cart call carries
// an explicit Owner; there is no ambient "current cart" state.
type Owner struct {
	ID   string    `json:"id"`
	Kind OwnerKind `json:"kind"`
}

// LineItem is one product+variant+quantity entry in a cart. UnitPriceCents,
// Name and ImageURL are snapshots taken from the catalog when the item was
// added; they are not re-validated against the live catalog on reads.
type LineItem struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"-"`
	ProductID      string    `json:"productId"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Size           string    `json:"size,omitempty"`
	Color          string    `json:"color,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NaturalKey is the tuple that must remain unique among one owner's line
// items. Two adds with the same key consolidate into a single line.
type NaturalKey struct {
	ProductID string
	Size      string
	Color     string
}

// Key returns the item's natural key within its owner's cart.
func (l LineItem) Key() NaturalKey {
	return NaturalKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// TotalCents is the line total at the snapshot unit price.
func (l LineItem) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// PricingResult holds the derived money breakdown for a set of line items.
// It is always recomputed from the current items and never stored.
type PricingResult struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`
}
