package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job_board/internal/model"

	"github.com/jackc/pgx/v5"
)

// OtpRepository defines operations for OTP request data. IncrementAttempts
// and Consume are single statements so that concurrent verifications of
// the same code cannot both succeed.
type OtpRepository interface {
	Create(ctx context.Context, req *model.OtpRequest) error
	FindActiveByPhone(ctx context.Context, phone string, now time.Time) (*model.OtpRequest, error)
	IncrementAttempts(ctx context.Context, id int64) error
	Consume(ctx context.Context, id int64) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db DB
}

// NewOtpRepository creates a new OtpRepository
func NewOtpRepository(db DB) OtpRepository {
	return &otpRepository{db: db}
}

// Create inserts a new OTP request
func (r *otpRepository) Create(ctx context.Context, req *model.OtpRequest) error {
	sql := `INSERT INTO otp_requests (phone, purpose, code_hash, attempts, expires_at, created_at)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, sql, req.Phone, req.Purpose, req.CodeHash, req.Attempts, req.ExpiresAt, req.CreatedAt).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("failed to create otp request: %w", err)
	}
	return nil
}

// FindActiveByPhone returns the newest request for the phone that is
// neither expired nor exhausted, or nil when there is none.
func (r *otpRepository) FindActiveByPhone(ctx context.Context, phone string, now time.Time) (*model.OtpRequest, error) {
	req := &model.OtpRequest{}
	sql := `SELECT id, phone, purpose, code_hash, attempts, expires_at, created_at
            FROM otp_requests
            WHERE phone = $1 AND expires_at > $2 AND attempts < 5
            ORDER BY created_at DESC LIMIT 1`
	err := r.db.QueryRow(ctx, sql, phone, now).Scan(
		&req.ID, &req.Phone, &req.Purpose, &req.CodeHash, &req.Attempts, &req.ExpiresAt, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active otp request: %w", err)
	}
	return req, nil
}

// IncrementAttempts bumps the attempt counter atomically
func (r *otpRepository) IncrementAttempts(ctx context.Context, id int64) error {
	sql := `UPDATE otp_requests SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to increment otp attempts: %w", err)
	}
	return nil
}

// Consume deletes the request and reports whether this caller got it.
// false means another verification already consumed the row.
func (r *otpRepository) Consume(ctx context.Context, id int64) (bool, error) {
	sql := `DELETE FROM otp_requests WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteExpired removes stale rows. Housekeeping only: expiry is always
// checked at verify time regardless.
func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql := `DELETE FROM otp_requests WHERE expires_at <= $1`
	tag, err := r.db.Exec(ctx, sql, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
