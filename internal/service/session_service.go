package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrSessionInvalid  = errors.New("invalid or expired session")
	ErrAccountDisabled = errors.New("account is suspended or inactive")
)

// TokenPair is the access/refresh pair handed out at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionService issues access/refresh token pairs and tracks refresh
// tokens in the credential store (hashed, never raw).
type SessionService interface {
	IssuePair(ctx context.Context, user *model.User) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	codec       *utils.TokenCodec
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, codec *utils.TokenCodec) SessionService {
	return &sessionService{sessionRepo: sessionRepo, userRepo: userRepo, codec: codec}
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IssuePair creates an access token, a refresh token, and the session row
// holding the hashed refresh token
func (s *sessionService) IssuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.codec.Issue(utils.FamilyAccess, user.ID, user.Role, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.codec.Issue(utils.FamilyRefresh, user.ID, user.Role, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	session := &model.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: hashRefreshToken(refreshToken),
		ExpiresAt:        time.Now().Add(utils.FamilyRefresh.TTL()),
		CreatedAt:        time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token: the presented token's session row is
// deleted and a fresh pair is issued. A token whose row is already gone
// (logged out, or rotated by a concurrent request) is rejected.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Verify(utils.FamilyRefresh, refreshToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	deleted, err := s.sessionRepo.DeleteByTokenHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	if !deleted {
		return nil, ErrSessionInvalid
	}

	userID, err := claims.ParsedUserID()
	if err != nil {
		return nil, ErrSessionInvalid
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionInvalid
	}
	if user.IsSuspended || !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.IssuePair(ctx, user)
}

// Logout deletes the session for the presented refresh token
func (s *sessionService) Logout(ctx context.Context, refreshToken string) error {
	_, err := s.sessionRepo.DeleteByTokenHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeAll deletes every session for the user (password change, admin
// suspension)
func (s *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}
