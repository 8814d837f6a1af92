package service

import (
	"context"
	"sync"
	"time"

	"job_board/internal/model"

	"github.com/google/uuid"
)

// In-memory repository fakes mirroring the pgx repositories' contract:
// lookups return (nil, nil) when nothing matches.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone != nil && *u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) SetSuspended(_ context.Context, id uuid.UUID, suspended bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsSuspended = suspended
	}
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeOtpRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests []*model.OtpRequest
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{nextID: 1}
}

func (r *fakeOtpRepo) Create(_ context.Context, req *model.OtpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	r.requests = append(r.requests, req)
	return nil
}

func (r *fakeOtpRepo) FindActiveByPhone(_ context.Context, phone string, now time.Time) (*model.OtpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *model.OtpRequest
	for _, req := range r.requests {
		if req.Phone != phone || !req.ExpiresAt.After(now) || req.Attempts >= 5 {
			continue
		}
		if newest == nil || req.CreatedAt.After(newest.CreatedAt) || (req.CreatedAt.Equal(newest.CreatedAt) && req.ID > newest.ID) {
			newest = req
		}
	}
	return newest, nil
}

func (r *fakeOtpRepo) IncrementAttempts(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ID == id {
			req.Attempts++
		}
	}
	return nil
}

func (r *fakeOtpRepo) Consume(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, req := range r.requests {
		if req.ID == id {
			r.requests = append(r.requests[:i], r.requests[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOtpRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.requests[:0]
	var n int64
	for _, req := range r.requests {
		if req.ExpiresAt.After(now) {
			kept = append(kept, req)
		} else {
			n++
		}
	}
	r.requests = kept
	return n, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.UserSession // keyed by refresh token hash
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.UserSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.RefreshTokenHash] = session
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*model.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[tokenHash], nil
}

func (r *fakeSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[tokenHash]; !ok {
		return false, nil
	}
	delete(r.sessions, tokenHash)
	return true, nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeTwoFactorRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.TwoFactorAuth
}

func newFakeTwoFactorRepo() *fakeTwoFactorRepo {
	return &fakeTwoFactorRepo{records: map[uuid.UUID]*model.TwoFactorAuth{}}
}

func (r *fakeTwoFactorRepo) Upsert(_ context.Context, record *model.TwoFactorAuth) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = record
	return nil
}

func (r *fakeTwoFactorRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.TwoFactorAuth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[userID], nil
}

func (r *fakeTwoFactorRepo) Enable(_ context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[userID]; ok {
		rec.IsEnabled = true
		rec.VerifiedAt = &verifiedAt
	}
	return nil
}

func (r *fakeTwoFactorRepo) ReplaceBackupCodes(_ context.Context, userID uuid.UUID, hashes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[userID]; ok {
		rec.BackupCodes = hashes
		rec.ConsumedCount = 0
	}
	return nil
}

func (r *fakeTwoFactorRepo) ConsumeBackupCode(_ context.Context, userID uuid.UUID, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok || hash == "" {
		return false, nil
	}
	for i, h := range rec.BackupCodes {
		if h == hash {
			rec.BackupCodes[i] = ""
			rec.ConsumedCount++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTwoFactorRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

type fakeOAuthRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.OAuthAccount // keyed by provider + "/" + provider user id
	upserts  int
}

func newFakeOAuthRepo() *fakeOAuthRepo {
	return &fakeOAuthRepo{accounts: map[string]*model.OAuthAccount{}}
}

func (r *fakeOAuthRepo) Upsert(_ context.Context, account *model.OAuthAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.accounts[account.Provider+"/"+account.ProviderUserID] = account
	return nil
}

func (r *fakeOAuthRepo) FindByProviderID(_ context.Context, provider, providerUserID string) (*model.OAuthAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[provider+"/"+providerUserID], nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]*model.Job{}}
}

func (r *fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id], nil
}

func (r *fakeJobRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return false, nil
	}
	job.IsApproved = approved
	return true, nil
}
