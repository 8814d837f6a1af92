package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TwoFactorRepository defines operations for per-user TOTP records.
// ConsumeBackupCode is a single conditional statement: the matched slot is
// tombstoned (set to '') in the same statement that checks it still holds
// the hash, so two logins cannot spend the same code.
type TwoFactorRepository interface {
	Upsert(ctx context.Context, record *model.TwoFactorAuth) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.TwoFactorAuth, error)
	Enable(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error
	ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error
	ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type twoFactorRepository struct {
	db DB
}

// NewTwoFactorRepository creates a new TwoFactorRepository
func NewTwoFactorRepository(db DB) TwoFactorRepository {
	return &twoFactorRepository{db: db}
}

// Upsert writes the record, replacing any previous (e.g. abandoned) setup
func (r *twoFactorRepository) Upsert(ctx context.Context, record *model.TwoFactorAuth) error {
	sql := `INSERT INTO two_factor_auth (user_id, secret, backup_codes, is_enabled, verified_at, consumed_count, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (user_id) DO UPDATE SET
                secret = EXCLUDED.secret,
                backup_codes = EXCLUDED.backup_codes,
                is_enabled = EXCLUDED.is_enabled,
                verified_at = EXCLUDED.verified_at,
                consumed_count = EXCLUDED.consumed_count,
                updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, sql, record.UserID, record.Secret, record.BackupCodes, record.IsEnabled,
		record.VerifiedAt, record.ConsumedCount, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert two-factor record: %w", err)
	}
	return nil
}

// FindByUserID retrieves the record for a user, or nil when 2FA was never
// set up
func (r *twoFactorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.TwoFactorAuth, error) {
	record := &model.TwoFactorAuth{}
	sql := `SELECT user_id, secret, backup_codes, is_enabled, verified_at, consumed_count, created_at, updated_at
            FROM two_factor_auth WHERE user_id = $1`
	err := r.db.QueryRow(ctx, sql, userID).Scan(
		&record.UserID, &record.Secret, &record.BackupCodes, &record.IsEnabled,
		&record.VerifiedAt, &record.ConsumedCount, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find two-factor record: %w", err)
	}
	return record, nil
}

// Enable flips the record to enabled and stamps the verification time
func (r *twoFactorRepository) Enable(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	sql := `UPDATE two_factor_auth SET is_enabled = TRUE, verified_at = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, sql, userID, verifiedAt)
	if err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("two-factor record for user %s not found", userID)
	}
	return nil
}

// ReplaceBackupCodes swaps in a fresh batch and resets the consumed count
func (r *twoFactorRepository) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	sql := `UPDATE two_factor_auth SET backup_codes = $2, consumed_count = 0, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, sql, userID, hashes)
	if err != nil {
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("two-factor record for user %s not found", userID)
	}
	return nil
}

// ConsumeBackupCode tombstones the slot holding the hash. Returns false
// when no live slot holds it (wrong code, or already consumed).
func (r *twoFactorRepository) ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	sql := `UPDATE two_factor_auth
            SET backup_codes = array_replace(backup_codes, $2, ''),
                consumed_count = consumed_count + 1,
                updated_at = NOW()
            WHERE user_id = $1 AND $2 <> '' AND $2 = ANY(backup_codes)`
	tag, err := r.db.Exec(ctx, sql, userID, hash)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the record entirely (2FA disabled)
func (r *twoFactorRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	sql := `DELETE FROM two_factor_auth WHERE user_id = $1`
	_, err := r.db.Exec(ctx, sql, userID)
	if err != nil {
		return fmt.Errorf("failed to delete two-factor record: %w", err)
	}
	return nil
}
