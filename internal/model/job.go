package model

import (
	"time"

	"github.com/google/uuid"
)

// Job is a minimal listing record. The listing CRUD surface lives
// elsewhere; this model exists for the moderation actions guarded by the
// permission gate.
type Job struct {
	ID         uuid.UUID `json:"id"`
	EmployerID uuid.UUID `json:"employer_id"`
	Title      string    `json:"title"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}
