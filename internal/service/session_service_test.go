package service

import (
	"context"
	"testing"
	"time"

	"job_board/internal/model"
	"job_board/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	email := "user@example.com"
	return &model.User{
		ID:           uuid.New(),
		Email:        &email,
		PasswordHash: "x",
		Role:         model.RoleJobSeeker,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func newTestSessionService(t *testing.T) (SessionService, *fakeSessionRepo, *fakeUserRepo, *utils.TokenCodec) {
	t.Helper()
	sessionRepo := newFakeSessionRepo()
	userRepo := newFakeUserRepo()
	codec := utils.NewTokenCodec("test-secret")
	return NewSessionService(sessionRepo, userRepo, codec), sessionRepo, userRepo, codec
}

func TestSessionService_IssuePair(t *testing.T) {
	svc, sessionRepo, userRepo, codec := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	pair, err := svc.IssuePair(context.Background(), user)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 1, sessionRepo.count())

	accessClaims, err := codec.Verify(utils.FamilyAccess, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), accessClaims.UserID)

	refreshClaims, err := codec.Verify(utils.FamilyRefresh, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), refreshClaims.UserID)

	// The raw refresh token never hits storage, only its hash.
	stored, err := sessionRepo.FindByTokenHash(context.Background(), hashRefreshToken(pair.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, pair.RefreshToken, stored.RefreshTokenHash)
}

func TestSessionService_Refresh_RotatesToken(t *testing.T) {
	svc, sessionRepo, userRepo, _ := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	pair, err := svc.IssuePair(context.Background(), user)
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)

	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, sessionRepo.count())

	// The old token's session row is gone; replaying it must fail.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, userRepo, _ := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	pair, err := svc.IssuePair(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionService_Refresh_SuspendedUser(t *testing.T) {
	svc, _, userRepo, _ := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	pair, err := svc.IssuePair(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, userRepo.SetSuspended(context.Background(), user.ID, true))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSessionService_Logout(t *testing.T) {
	svc, sessionRepo, userRepo, _ := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	pair, err := svc.IssuePair(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))
	assert.Equal(t, 0, sessionRepo.count())

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionService_RevokeAll(t *testing.T) {
	svc, sessionRepo, userRepo, _ := newTestSessionService(t)
	user := testUser()
	require.NoError(t, userRepo.Create(context.Background(), user))

	_, err := svc.IssuePair(context.Background(), user)
	require.NoError(t, err)
	_, err = svc.IssuePair(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, 2, sessionRepo.count())

	require.NoError(t, svc.RevokeAll(context.Background(), user.ID))
	assert.Equal(t, 0, sessionRepo.count())
}
