package repository

import (
	"context"
	"errors"
	"fmt"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository defines operations for refresh-token sessions
type SessionRepository interface {
	Create(ctx context.Context, session *model.UserSession) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.UserSession, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type sessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new session row
func (r *sessionRepository) Create(ctx context.Context, session *model.UserSession) error {
	sql := `INSERT INTO user_sessions (id, user_id, refresh_token_hash, expires_at, created_at)
            VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, sql, session.ID, session.UserID, session.RefreshTokenHash, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByTokenHash retrieves a session by the hashed refresh token
func (r *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.UserSession, error) {
	session := &model.UserSession{}
	sql := `SELECT id, user_id, refresh_token_hash, expires_at, created_at
            FROM user_sessions WHERE refresh_token_hash = $1`
	err := r.db.QueryRow(ctx, sql, tokenHash).Scan(
		&session.ID, &session.UserID, &session.RefreshTokenHash, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// DeleteByTokenHash removes a session and reports whether it existed.
// Rotation relies on this: only the caller that deleted the old row may
// issue the replacement pair.
func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	sql := `DELETE FROM user_sessions WHERE refresh_token_hash = $1`
	tag, err := r.db.Exec(ctx, sql, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByUserID removes all sessions for a user (logout everywhere,
// password change)
func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	sql := `DELETE FROM user_sessions WHERE user_id = $1`
	_, err := r.db.Exec(ctx, sql, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}
