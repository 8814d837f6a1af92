package repository

import (
	"context"
	"errors"
	"fmt"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobRepository covers the moderation slice of the listings table. The
// listing CRUD surface lives in another service.
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) (bool, error)
}

type jobRepository struct {
	db DB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db DB) JobRepository {
	return &jobRepository{db: db}
}

// FindByID retrieves a job listing
func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job := &model.Job{}
	sql := `SELECT id, employer_id, title, is_approved, created_at FROM jobs WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&job.ID, &job.EmployerID, &job.Title, &job.IsApproved, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return job, nil
}

// SetApproved flips the approval flag; false means the job does not exist
func (r *jobRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (bool, error) {
	sql := `UPDATE jobs SET is_approved = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, id, approved)
	if err != nil {
		return false, fmt.Errorf("failed to update job approval: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
