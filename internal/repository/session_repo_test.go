package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"job_board/internal/model"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepoMock(t *testing.T) (SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewSessionRepository(mock), mock
}

func TestSessionRepository_Create(t *testing.T) {
	repo, mock := newSessionRepoMock(t)
	session := &model.UserSession{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		RefreshTokenHash: "hash",
		ExpiresAt:        time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:        time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_sessions`)).
		WithArgs(session.ID, session.UserID, session.RefreshTokenHash, session.ExpiresAt, session.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteByTokenHash(t *testing.T) {
	repo, mock := newSessionRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_sessions WHERE refresh_token_hash = $1`)).
		WithArgs("hash").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := repo.DeleteByTokenHash(context.Background(), "hash")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Concurrent rotation: the row is already gone for the loser.
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_sessions WHERE refresh_token_hash = $1`)).
		WithArgs("hash").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err = repo.DeleteByTokenHash(context.Background(), "hash")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteByUserID(t *testing.T) {
	repo, mock := newSessionRepoMock(t)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_sessions WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, repo.DeleteByUserID(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
