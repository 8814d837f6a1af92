package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleNotAllowed     = errors.New("role must be job_seeker or employer")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

// AuthService provides email/password authentication. Phone-based login
// lives in OtpService; this surface issues the 24h session-family token.
type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password, twoFactorCode string) (*model.User, string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type authService struct {
	userRepo  repository.UserRepository
	sessions  SessionService
	twoFactor TwoFactorService
	codec     *utils.TokenCodec
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessions SessionService, twoFactor TwoFactorService, codec *utils.TokenCodec) AuthService {
	return &authService{userRepo: userRepo, sessions: sessions, twoFactor: twoFactor, codec: codec}
}

// Register creates a new job-seeker or employer account
func (s *authService) Register(ctx context.Context, email, password, role string) (*model.User, string, error) {
	if role != model.RoleJobSeeker && role != model.RoleEmployer {
		return nil, "", ErrRoleNotAllowed
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        &email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.codec.Issue(utils.FamilySession, user.ID, user.Role, nil)
	if err != nil {
		return nil, "", fmt.Errorf("user created, but failed to issue token: %w", err)
	}
	return user, token, nil
}

// Login authenticates email+password and, when 2FA is enabled for the
// account, the second factor too
func (s *authService) Login(ctx context.Context, email, password, twoFactorCode string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if user.IsSuspended || !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	if _, err := s.twoFactor.ValidateLogin(ctx, user.ID, twoFactorCode); err != nil {
		return nil, "", err
	}

	token, err := s.codec.Issue(utils.FamilySession, user.ID, user.Role, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// ForgotPassword issues a reset-family token for the account. Delivery is
// out of scope; an unknown email returns an empty token so the endpoint
// can answer identically either way.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", nil
	}

	token, err := s.codec.Issue(utils.FamilyReset, user.ID, user.Role, nil)
	if err != nil {
		return "", fmt.Errorf("failed to issue reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset-family token, replaces the password, and
// revokes every session for the user
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.codec.Verify(utils.FamilyReset, resetToken)
	if err != nil {
		return ErrResetTokenInvalid
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return ErrResetTokenInvalid
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return s.sessions.RevokeAll(ctx, userID)
}
