package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks an order through the checkout lifecycle.
type OrderStatus string

const (
	// OrderStatusPending marks a provisional order created when the
	// checkout session is opened. Stock is not decremented yet.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid marks an order confirmed by the payment provider's
	// webhook. Stock has been decremented.
	OrderStatusPaid OrderStatus = "paid"
)

// Order is the header of a purchase. It exclusively owns its lines: they
// are created together inside one transaction and never independently.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"user_id" db:"user_id"`
	Total           float64     `json:"total" db:"total"`
	Status          OrderStatus `json:"status" db:"status"`
	StripeSessionID string      `json:"stripe_session_id,omitempty" db:"stripe_session_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// OrderLine records one product position of an order at the price it was
// purchased for. Immutable once the order is paid.
type OrderLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
}
