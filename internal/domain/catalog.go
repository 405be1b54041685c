package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the store catalog. StripeProductID and
// StripePriceID link the local record to its counterparts in the payment
// provider's catalog.
type Product struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	Price           float64   `json:"price" db:"price"`
	Stock           int       `json:"stock" db:"stock"`
	CategoryID      uuid.UUID `json:"category_id" db:"category_id"`
	SupplierID      uuid.UUID `json:"supplier_id" db:"supplier_id"`
	StripeProductID string    `json:"stripe_product_id" db:"stripe_product_id"`
	StripePriceID   string    `json:"stripe_price_id" db:"stripe_price_id"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Supplier represents a product supplier
type Supplier struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Contact   string    `json:"contact" db:"contact"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role represents a user role
type Role struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}
