package domain

import (
	"math"
	"time"

	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// Pricing rules, all amounts in cents.
const (
	FreeShippingThreshold int64   = 10000
	FlatShippingPrice     int64   = 1000
	TaxRate               float64 = 0.15
)

// Order is a placed purchase.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      int64           `json:"items_price"`
	TaxPrice        int64           `json:"tax_price"`
	ShippingPrice   int64           `json:"shipping_price"`
	TotalPrice      int64           `json:"total_price"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a line on an order. Name, Image and Price are copied from the
// product when the order is placed.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// ShippingAddress is stored inline on the order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OwnerID returns the id of the principal that placed the order.
func (o *Order) OwnerID() string {
	return o.UserID
}

// CalculatePrices fills the derived price fields from Items.
func (o *Order) CalculatePrices() {
	var items int64
	for _, it := range o.Items {
		items += it.Price * int64(it.Quantity)
	}
	o.ItemsPrice = items
	o.ShippingPrice = FlatShippingPrice
	if items > FreeShippingThreshold {
		o.ShippingPrice = 0
	}
	o.TaxPrice = int64(math.Round(float64(items) * TaxRate))
	o.TotalPrice = o.ItemsPrice + o.ShippingPrice + o.TaxPrice
}

// MarkPaid records payment. Paying twice is a conflict.
func (o *Order) MarkPaid(at time.Time) error {
	if o.IsPaid {
		return apperrors.Conflict("order is already paid")
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.UpdatedAt = at
	return nil
}

// MarkDelivered records delivery of a paid order.
func (o *Order) MarkDelivered(at time.Time) error {
	if !o.IsPaid {
		return apperrors.InvalidInput("order must be paid before delivery")
	}
	if o.IsDelivered {
		return apperrors.Conflict("order is already delivered")
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	o.UpdatedAt = at
	return nil
}
