package model

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorAuth is the per-user TOTP record, one-to-one with User.
// BackupCodes holds hashed codes; a consumed slot is tombstoned to the
// empty string so remaining slots keep their original positions.
type TwoFactorAuth struct {
	UserID        uuid.UUID  `json:"user_id"`
	Secret        string     `json:"-"`
	BackupCodes   []string   `json:"-"`
	IsEnabled     bool       `json:"is_enabled"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	ConsumedCount int        `json:"consumed_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RemainingBackupCodes counts the slots that have not been consumed yet.
func (t *TwoFactorAuth) RemainingBackupCodes() int {
	n := 0
	for _, c := range t.BackupCodes {
		if c != "" {
			n++
		}
	}
	return n
}
