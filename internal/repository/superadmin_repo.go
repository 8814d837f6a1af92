package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SuperAdminRepository defines operations for super-admin accounts
type SuperAdminRepository interface {
	Create(ctx context.Context, admin *model.SuperAdmin) error
	FindByEmail(ctx context.Context, email string) (*model.SuperAdmin, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SuperAdmin, error)
}

type superAdminRepository struct {
	db DB
}

// NewSuperAdminRepository creates a new SuperAdminRepository
func NewSuperAdminRepository(db DB) SuperAdminRepository {
	return &superAdminRepository{db: db}
}

// Create inserts a new super-admin
func (r *superAdminRepository) Create(ctx context.Context, admin *model.SuperAdmin) error {
	perms, err := json.Marshal(admin.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	sql := `INSERT INTO super_admins (id, email, password_hash, role, permissions, is_active, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Exec(ctx, sql, admin.ID, admin.Email, admin.PasswordHash, admin.Role, perms, admin.IsActive, admin.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}
	return nil
}

func (r *superAdminRepository) scanAdmin(row pgx.Row) (*model.SuperAdmin, error) {
	admin := &model.SuperAdmin{}
	var perms []byte
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role, &perms, &admin.IsActive, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan super admin: %w", err)
	}
	if err := json.Unmarshal(perms, &admin.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	return admin, nil
}

// FindByEmail retrieves a super-admin by email
func (r *superAdminRepository) FindByEmail(ctx context.Context, email string) (*model.SuperAdmin, error) {
	sql := `SELECT id, email, password_hash, role, permissions, is_active, created_at
            FROM super_admins WHERE email = $1`
	return r.scanAdmin(r.db.QueryRow(ctx, sql, email))
}

// FindByID retrieves a super-admin by ID
func (r *superAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SuperAdmin, error) {
	sql := `SELECT id, email, password_hash, role, permissions, is_active, created_at
            FROM super_admins WHERE id = $1`
	return r.scanAdmin(r.db.QueryRow(ctx, sql, id))
}
