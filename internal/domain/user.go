package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Accounts come into existence only
// after the confirmation link sent at registration time is followed.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone" db:"phone"`
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
