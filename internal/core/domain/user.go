package domain

import "time"

const (
	// RoleAdmin may register new accounts.
	RoleAdmin = "admin"
	// RoleUser owns exactly one roster, selected by the uid claim.
	RoleUser = "user"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
