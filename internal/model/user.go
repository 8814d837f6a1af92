package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleJobSeeker = "job_seeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// User represents a job seeker, employer, or admin account.
// At least one of Email or Phone is always set.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	PasswordHash  string    `json:"-"` // Do not expose password hash in JSON responses
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	IsSuspended   bool      `json:"is_suspended"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
