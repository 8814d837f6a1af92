package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoFactorRepoMock(t *testing.T) (TwoFactorRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewTwoFactorRepository(mock), mock
}

func TestTwoFactorRepository_Upsert(t *testing.T) {
	repo, mock := newTwoFactorRepoMock(t)
	now := time.Now()
	record := &model.TwoFactorAuth{
		UserID:      uuid.New(),
		Secret:      "SECRET",
		BackupCodes: []string{"h1", "h2"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO two_factor_auth`)).
		WithArgs(record.UserID, record.Secret, record.BackupCodes, record.IsEnabled,
			record.VerifiedAt, record.ConsumedCount, record.CreatedAt, record.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTwoFactorRepository_FindByUserID_NotFound(t *testing.T) {
	repo, mock := newTwoFactorRepoMock(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM two_factor_auth WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	record, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTwoFactorRepository_Enable_MissingRecord(t *testing.T) {
	repo, mock := newTwoFactorRepoMock(t)
	userID := uuid.New()
	verifiedAt := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE two_factor_auth SET is_enabled = TRUE`)).
		WithArgs(userID, verifiedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Enable(context.Background(), userID, verifiedAt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTwoFactorRepository_ConsumeBackupCode(t *testing.T) {
	repo, mock := newTwoFactorRepoMock(t)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`array_replace(backup_codes, $2, '')`)).
		WithArgs(userID, "hash-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	consumed, err := repo.ConsumeBackupCode(context.Background(), userID, "hash-1")
	require.NoError(t, err)
	assert.True(t, consumed)

	// Already-tombstoned code: the WHERE clause matches nothing.
	mock.ExpectExec(regexp.QuoteMeta(`array_replace(backup_codes, $2, '')`)).
		WithArgs(userID, "hash-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	consumed, err = repo.ConsumeBackupCode(context.Background(), userID, "hash-1")
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTwoFactorRepository_ReplaceBackupCodes(t *testing.T) {
	repo, mock := newTwoFactorRepoMock(t)
	userID := uuid.New()
	hashes := []string{"n1", "n2", "n3"}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE two_factor_auth SET backup_codes = $2, consumed_count = 0`)).
		WithArgs(userID, hashes).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.ReplaceBackupCodes(context.Background(), userID, hashes))
	assert.NoError(t, mock.ExpectationsWereMet())
}
