package domain

import "github.com/google/uuid"

// User mirrors an account owned by the authentication provider.
type User struct {
	ID       uuid.UUID
	Email    string
	Nickname string
}

// Caller is the authenticated identity performing an operation.
// It is resolved once by the HTTP layer and passed explicitly to services.
type Caller struct {
	UserID uuid.UUID
	Email  string
}
