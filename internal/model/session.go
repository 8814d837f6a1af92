package model

import (
	"time"

	"github.com/google/uuid"
)

// UserSession holds a hashed refresh token. The raw token is only ever
// returned to the client; rotation deletes the row and creates a new one.
type UserSession struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}
