package repository

import (
	"context"
	"errors"
	"fmt"

	"job_board/internal/model"

	"github.com/jackc/pgx/v5"
)

// OAuthAccountRepository defines operations for provider-account links
type OAuthAccountRepository interface {
	Upsert(ctx context.Context, account *model.OAuthAccount) error
	FindByProviderID(ctx context.Context, provider, providerUserID string) (*model.OAuthAccount, error)
}

type oauthAccountRepository struct {
	db DB
}

// NewOAuthAccountRepository creates a new OAuthAccountRepository
func NewOAuthAccountRepository(db DB) OAuthAccountRepository {
	return &oauthAccountRepository{db: db}
}

// Upsert stores the link keyed by (provider, provider_user_id), refreshing
// the stored provider tokens on every login
func (r *oauthAccountRepository) Upsert(ctx context.Context, account *model.OAuthAccount) error {
	sql := `INSERT INTO oauth_accounts (user_id, provider, provider_user_id, access_token, refresh_token, token_expires_at, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (provider, provider_user_id) DO UPDATE SET
                access_token = EXCLUDED.access_token,
                refresh_token = EXCLUDED.refresh_token,
                token_expires_at = EXCLUDED.token_expires_at,
                updated_at = EXCLUDED.updated_at
            RETURNING id`
	err := r.db.QueryRow(ctx, sql, account.UserID, account.Provider, account.ProviderUserID,
		account.AccessToken, account.RefreshToken, account.TokenExpiresAt, account.CreatedAt, account.UpdatedAt).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert oauth account: %w", err)
	}
	return nil
}

// FindByProviderID retrieves a link by its provider identity
func (r *oauthAccountRepository) FindByProviderID(ctx context.Context, provider, providerUserID string) (*model.OAuthAccount, error) {
	account := &model.OAuthAccount{}
	sql := `SELECT id, user_id, provider, provider_user_id, access_token, refresh_token, token_expires_at, created_at, updated_at
            FROM oauth_accounts WHERE provider = $1 AND provider_user_id = $2`
	err := r.db.QueryRow(ctx, sql, provider, providerUserID).Scan(
		&account.ID, &account.UserID, &account.Provider, &account.ProviderUserID,
		&account.AccessToken, &account.RefreshToken, &account.TokenExpiresAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find oauth account: %w", err)
	}
	return account, nil
}
