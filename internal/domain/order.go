package domain

import "time"

// Order statuses. Orders are never deleted, only status-transitioned.
const (
	OrderStatusPending = "pending"

	PaymentStatusAwaiting = "awaiting_payment"
	PaymentStatusPaid     = "paid"
)

// Payment methods accepted at checkout. Card requires an external capture
// step; the rest are settled out of band.
const (
	PaymentMethodCard         = "card"
	PaymentMethodPix          = "pix"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodOnDelivery   = "on_delivery"
)

// KnownPaymentMethod reports whether method is one the checkout accepts.
func KnownPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodPix, PaymentMethodBankTransfer, PaymentMethodOnDelivery:
		return true
	}
	return false
}

// ShippingAddress is captured at checkout and frozen onto the order.
type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	StreetName string `json:"streetName"`
	Number     string `json:"number,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderLine is an immutable snapshot of a cart line at order creation time.
type OrderLine struct {
	ID             string `json:"id"`
	OrderID        string `json:"-"`
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// Order is created from a cart snapshot at checkout. Everything except
// PaymentStatus and PaymentRef is immutable after creation.
type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentRef      string          `json:"paymentRef,omitempty"`
	SubtotalCents   int64           `json:"subtotalCents"`
	ShippingCents   int64           `json:"shippingCents"`
	DiscountCents   int64           `json:"discountCents"`
	TotalCents      int64           `json:"totalCents"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Lines           []OrderLine     `json:"lines,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}
