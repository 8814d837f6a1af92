package service

import (
	"context"
	"testing"
	"time"

	"job_board/internal/model"
	"job_board/internal/utils"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authTestEnv struct {
	svc         AuthService
	twoFactor   TwoFactorService
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	codec       *utils.TokenCodec
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	codec := utils.NewTokenCodec("test-secret")
	sessions := NewSessionService(sessionRepo, userRepo, codec)
	twoFactor := NewTwoFactorService(newFakeTwoFactorRepo(), userRepo, "JobBoard", "test-salt")
	return &authTestEnv{
		svc:         NewAuthService(userRepo, sessions, twoFactor, codec),
		twoFactor:   twoFactor,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		codec:       codec,
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newAuthTestEnv(t)

	user, token, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)

	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "seeker@example.com", *user.Email)
	assert.Equal(t, model.RoleJobSeeker, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	claims, err := env.codec.Verify(utils.FamilySession, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	_, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	_, _, err = env.svc.Register(context.Background(), "seeker@example.com", "different456", model.RoleEmployer)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_AdminRoleRefused(t *testing.T) {
	env := newAuthTestEnv(t)

	_, _, err := env.svc.Register(context.Background(), "admin@example.com", "password123", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestAuthService_Login(t *testing.T) {
	env := newAuthTestEnv(t)
	_, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	user, token, err := env.svc.Login(context.Background(), "seeker@example.com", "password123", "")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, model.RoleJobSeeker, user.Role)

	// The session token is not valid as any other family.
	_, err = env.codec.Verify(utils.FamilyAccess, token)
	assert.Error(t, err)
	_, err = env.codec.Verify(utils.FamilyReset, token)
	assert.Error(t, err)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	_, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	_, _, err = env.svc.Login(context.Background(), "seeker@example.com", "wrongpass99", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.svc.Login(context.Background(), "nobody@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_SuspendedAccount(t *testing.T) {
	env := newAuthTestEnv(t)
	user, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	require.NoError(t, env.userRepo.SetSuspended(context.Background(), user.ID, true))

	_, _, err = env.svc.Login(context.Background(), "seeker@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_Login_WithTwoFactor(t *testing.T) {
	env := newAuthTestEnv(t)
	user, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	setup, err := env.twoFactor.Setup(context.Background(), user.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.twoFactor.VerifyEnable(context.Background(), user.ID, code))

	// Password alone is no longer enough.
	_, _, err = env.svc.Login(context.Background(), "seeker@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrTwoFactorRequired)

	code, err = totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	_, token, err := env.svc.Login(context.Background(), "seeker@example.com", "password123", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// A backup code works at login too.
	_, token, err = env.svc.Login(context.Background(), "seeker@example.com", "password123", setup.BackupCodes[0])
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	token, err := env.svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	user, _, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	// An open session that must not survive the reset.
	sessions := NewSessionService(env.sessionRepo, env.userRepo, env.codec)
	_, err = sessions.IssuePair(context.Background(), user)
	require.NoError(t, err)

	resetToken, err := env.svc.ForgotPassword(context.Background(), "seeker@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	require.NoError(t, env.svc.ResetPassword(context.Background(), resetToken, "newpassword456"))

	_, _, err = env.svc.Login(context.Background(), "seeker@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.svc.Login(context.Background(), "seeker@example.com", "newpassword456", "")
	assert.NoError(t, err)

	assert.Equal(t, 0, env.sessionRepo.count())
}

func TestAuthService_ResetPassword_RejectsOtherFamilies(t *testing.T) {
	env := newAuthTestEnv(t)
	user, sessionToken, err := env.svc.Register(context.Background(), "seeker@example.com", "password123", model.RoleJobSeeker)
	require.NoError(t, err)

	// A session token must not pass as a reset token.
	err = env.svc.ResetPassword(context.Background(), sessionToken, "newpassword456")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	// Neither may an expired reset token.
	expired, err := env.codec.IssueWithTTL(utils.FamilyReset, user.ID, user.Role, nil, -time.Minute)
	require.NoError(t, err)
	err = env.svc.ResetPassword(context.Background(), expired, "newpassword456")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
