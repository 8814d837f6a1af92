package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPRateLimited    = errors.New("a code was sent recently, please wait before requesting another")
	ErrOTPInvalid        = errors.New("invalid or expired code")
	ErrOTPPurposeInvalid = errors.New("invalid otp purpose")
)

const (
	otpDigits          = 6
	otpTTL             = 5 * time.Minute
	otpResendWindow    = 60 * time.Second
	otpResendKeyPrefix = "otp_resend:"
)

// OtpService implements phone-based one-time-code login. A successful
// verification consumes the code, creates the user on first-ever login
// for that phone, and issues an access/refresh pair.
type OtpService interface {
	Request(ctx context.Context, phone, purpose string) error
	Verify(ctx context.Context, phone, code string) (*model.User, *TokenPair, error)
}

type otpService struct {
	otpRepo  repository.OtpRepository
	userRepo repository.UserRepository
	sessions SessionService
	rdb      *redis.Client
	sms      SMSSender
	salt     string
}

// NewOtpService creates a new OtpService
func NewOtpService(otpRepo repository.OtpRepository, userRepo repository.UserRepository, sessions SessionService, rdb *redis.Client, sms SMSSender, salt string) OtpService {
	return &otpService{otpRepo: otpRepo, userRepo: userRepo, sessions: sessions, rdb: rdb, sms: sms, salt: salt}
}

// Request generates a 6-digit code for the phone, subject to a 60-second
// resend window per phone
func (s *otpService) Request(ctx context.Context, phone, purpose string) error {
	switch purpose {
	case model.OtpPurposeLogin, model.OtpPurposeRegister, model.OtpPurposeReset:
	default:
		return ErrOTPPurposeInvalid
	}

	ok, err := s.rdb.SetNX(ctx, otpResendKeyPrefix+phone, "1", otpResendWindow).Result()
	if err != nil {
		// Redis outage: allow the request rather than locking everyone out.
		log.Printf("WARN: otp resend limiter unavailable: %v", err)
	} else if !ok {
		return ErrOTPRateLimited
	}

	code, err := utils.GenerateNumericCode(otpDigits)
	if err != nil {
		return fmt.Errorf("failed to generate otp code: %w", err)
	}

	req := &model.OtpRequest{
		Phone:     phone,
		Purpose:   purpose,
		CodeHash:  utils.HashCode(s.salt, phone, code),
		Attempts:  0,
		ExpiresAt: time.Now().Add(otpTTL),
		CreatedAt: time.Now(),
	}
	if err := s.otpRepo.Create(ctx, req); err != nil {
		return fmt.Errorf("failed to store otp request: %w", err)
	}

	message := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	if err := s.sms.Send(ctx, phone, message); err != nil {
		return fmt.Errorf("failed to dispatch otp code: %w", err)
	}
	return nil
}

// Verify checks the code against the newest live request for the phone.
// Every failure path returns the same ErrOTPInvalid so responses do not
// reveal whether a code was wrong, expired, or never requested.
func (s *otpService) Verify(ctx context.Context, phone, code string) (*model.User, *TokenPair, error) {
	req, err := s.otpRepo.FindActiveByPhone(ctx, phone, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load otp request: %w", err)
	}
	if req == nil {
		return nil, nil, ErrOTPInvalid
	}

	if utils.HashCode(s.salt, phone, code) != req.CodeHash {
		if err := s.otpRepo.IncrementAttempts(ctx, req.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to record otp attempt: %w", err)
		}
		return nil, nil, ErrOTPInvalid
	}

	consumed, err := s.otpRepo.Consume(ctx, req.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to consume otp request: %w", err)
	}
	if !consumed {
		// A concurrent verification won the row.
		return nil, nil, ErrOTPInvalid
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		user, err = s.createPhoneUser(ctx, phone)
		if err != nil {
			return nil, nil, err
		}
	}
	if user.IsSuspended || !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.sessions.IssuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// createPhoneUser registers a phone-only account on first verification.
// The password is random and never disclosed, so password login stays
// unusable until the user sets one explicitly.
func (s *otpService) createPhoneUser(ctx context.Context, phone string) (*model.User, error) {
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
		ID:           uuid.New(),
		Phone:        &phone,
		PasswordHash: hash,
		Role:         model.RoleJobSeeker,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
