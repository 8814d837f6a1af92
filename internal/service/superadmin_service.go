package service

import (
	"context"
	"errors"
	"fmt"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

// SuperAdminService authenticates the super-admin console and carries the
// small administration surface the permission gate protects.
type SuperAdminService interface {
	Authenticate(ctx context.Context, email, password string) (*model.SuperAdmin, string, error)
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, error)
	SetUserSuspended(ctx context.Context, userID uuid.UUID, suspended bool) error
	ApproveJob(ctx context.Context, jobID uuid.UUID) error
}

type superAdminService struct {
	adminRepo repository.SuperAdminRepository
	userRepo  repository.UserRepository
	jobRepo   repository.JobRepository
	sessions  SessionService
	codec     *utils.TokenCodec
}

// NewSuperAdminService creates a new SuperAdminService
func NewSuperAdminService(adminRepo repository.SuperAdminRepository, userRepo repository.UserRepository, jobRepo repository.JobRepository, sessions SessionService, codec *utils.TokenCodec) SuperAdminService {
	return &superAdminService{adminRepo: adminRepo, userRepo: userRepo, jobRepo: jobRepo, sessions: sessions, codec: codec}
}

// Authenticate verifies credentials and issues an sa_ token carrying a
// snapshot of the admin's permission map
func (s *superAdminService) Authenticate(ctx context.Context, email, password string) (*model.SuperAdmin, string, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find super admin: %w", err)
	}
	if admin == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, "", ErrAccountDisabled
	}

	token, err := s.codec.Issue(utils.FamilySuperAdmin, admin.ID, admin.Role, admin.Permissions)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue super admin token: %w", err)
	}
	return admin, token, nil
}

// ListUsers returns a page of user accounts
func (s *superAdminService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

// SetUserSuspended flips the suspension flag and, when suspending, kills
// the user's sessions so the suspension takes effect immediately
func (s *superAdminService) SetUserSuspended(ctx context.Context, userID uuid.UUID, suspended bool) error {
	if err := s.userRepo.SetSuspended(ctx, userID, suspended); err != nil {
		return err
	}
	if suspended {
		return s.sessions.RevokeAll(ctx, userID)
	}
	return nil
}

// ApproveJob marks a listing as approved
func (s *superAdminService) ApproveJob(ctx context.Context, jobID uuid.UUID) error {
	ok, err := s.jobRepo.SetApproved(ctx, jobID, true)
	if err != nil {
		return err
	}
	if !ok {
		return ErrJobNotFound
	}
	return nil
}
