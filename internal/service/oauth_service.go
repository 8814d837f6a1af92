package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Coarse reason codes for the error redirect. Provider internals never
// reach the browser beyond one of these.
const (
	OAuthReasonState    = "state"
	OAuthReasonExchange = "exchange"
	OAuthReasonProfile  = "profile"
	OAuthReasonAccount  = "account"
)

var ErrOAuthProviderUnknown = errors.New("unknown oauth provider")

// OAuthFlowError carries the coarse reason code alongside the wrapped
// cause, which is only logged server-side.
type OAuthFlowError struct {
	Reason string
	Err    error
}

func (e *OAuthFlowError) Error() string {
	return fmt.Sprintf("oauth flow failed (%s): %v", e.Reason, e.Err)
}

func (e *OAuthFlowError) Unwrap() error { return e.Err }

const (
	oauthStateKeyPrefix  = "oauth_state:"
	oauthStateTTL        = 10 * time.Minute
	oauthExchangeTimeout = 10 * time.Second
)

type oauthStateData struct {
	Provider  string `json:"provider"`
	ReturnURL string `json:"return_url"`
	Role      string `json:"role"`
}

// OAuthLogin is the result of a completed callback.
type OAuthLogin struct {
	User      *model.User
	Tokens    *TokenPair
	ReturnURL string
}

// OAuthService runs the authorization-code flow: anti-CSRF state in
// short-lived Redis storage, code exchange with a bounded timeout, then
// account linking or creation.
type OAuthService interface {
	BeginAuth(ctx context.Context, provider, returnURL, role string) (string, error)
	Callback(ctx context.Context, provider, code, state string) (*OAuthLogin, error)
}

type oauthService struct {
	providers map[string]OAuthProvider
	userRepo  repository.UserRepository
	oauthRepo repository.OAuthAccountRepository
	sessions  SessionService
	rdb       *redis.Client
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(providers []OAuthProvider, userRepo repository.UserRepository, oauthRepo repository.OAuthAccountRepository, sessions SessionService, rdb *redis.Client) OAuthService {
	byName := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &oauthService{providers: byName, userRepo: userRepo, oauthRepo: oauthRepo, sessions: sessions, rdb: rdb}
}

// BeginAuth stores an unguessable state value with the return context and
// returns the provider consent URL
func (s *oauthService) BeginAuth(ctx context.Context, provider, returnURL, role string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrOAuthProviderUnknown
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(raw)

	data, err := json.Marshal(oauthStateData{Provider: provider, ReturnURL: returnURL, Role: role})
	if err != nil {
		return "", fmt.Errorf("failed to encode state data: %w", err)
	}
	if err := s.rdb.Set(ctx, oauthStateKeyPrefix+state, data, oauthStateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return p.AuthCodeURL(state), nil
}

// Callback verifies the state before anything else, exchanges the code,
// and links or creates the local account
func (s *oauthService) Callback(ctx context.Context, provider, code, state string) (*OAuthLogin, error) {
	if code == "" || state == "" {
		return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: errors.New("missing code or state")}
	}

	// GETDEL: the state is single use whatever happens next.
	raw, err := s.rdb.GetDel(ctx, oauthStateKeyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: errors.New("state not found or expired")}
		}
		return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: err}
	}
	var st oauthStateData
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: err}
	}
	if st.Provider != provider {
		return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: errors.New("state was issued for a different provider")}
	}

	p, ok := s.providers[provider]
	if !ok {
		return nil, &OAuthFlowError{Reason: OAuthReasonState, Err: ErrOAuthProviderUnknown}
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, oauthExchangeTimeout)
	defer cancel()

	token, err := p.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonExchange, Err: err}
	}

	profile, err := p.FetchProfile(exchangeCtx, token)
	if err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonProfile, Err: err}
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, &OAuthFlowError{Reason: OAuthReasonProfile, Err: errors.New("provider did not attest a verified email")}
	}

	user, err := s.resolveUser(ctx, profile, st.Role)
	if err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonAccount, Err: err}
	}

	now := time.Now()
	account := &model.OAuthAccount{
		UserID:         user.ID,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.TokenExpiresAt = &expiry
	}
	if err := s.oauthRepo.Upsert(ctx, account); err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonAccount, Err: err}
	}

	pair, err := s.sessions.IssuePair(ctx, user)
	if err != nil {
		return nil, &OAuthFlowError{Reason: OAuthReasonAccount, Err: err}
	}

	return &OAuthLogin{User: user, Tokens: pair, ReturnURL: st.ReturnURL}, nil
}

// resolveUser finds the local user through the provider link, then by the
// attested email, and finally creates one
func (s *oauthService) resolveUser(ctx context.Context, profile *Profile, role string) (*model.User, error) {
	account, err := s.oauthRepo.FindByProviderID(ctx, profile.Provider, profile.ProviderUserID)
	if err != nil {
		return nil, err
	}

	var user *model.User
	if account != nil {
		user, err = s.userRepo.FindByID(ctx, account.UserID)
	} else {
		user, err = s.userRepo.FindByEmail(ctx, profile.Email)
	}
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.createOAuthUser(ctx, profile.Email, role)
		if err != nil {
			return nil, err
		}
	}
	if user.IsSuspended || !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// createOAuthUser registers a local account with a random unusable
// password; the provider's attestation pre-verifies the email
func (s *oauthService) createOAuthUser(ctx context.Context, email, role string) (*model.User, error) {
	if role != model.RoleJobSeeker && role != model.RoleEmployer {
		role = model.RoleJobSeeker
	}

	random, err := utils.GenerateHexCode(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder password: %w", err)
	}
	hash, err := utils.HashPassword(random)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:            uuid.New(),
		Email:         &email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
