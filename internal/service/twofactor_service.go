package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"job_board/internal/model"
	"job_board/internal/repository"
	"job_board/internal/utils"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrTwoFactorNotSetUp       = errors.New("two-factor authentication is not set up")
	ErrTwoFactorCodeInvalid    = errors.New("invalid two-factor code")
	ErrTwoFactorRequired       = errors.New("two-factor code required")
)

const (
	backupCodeCount  = 10
	backupCodeLength = 8
	qrImageSize      = 256
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TwoFactorSetup is returned once, at setup time. The backup codes are
// never shown again.
type TwoFactorSetup struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	QRCode          string   `json:"qr_code"` // PNG data URI
	BackupCodes     []string `json:"backup_codes"`
}

// TwoFactorStatus is the user-visible state of the record.
type TwoFactorStatus struct {
	IsEnabled            bool       `json:"is_enabled"`
	RemainingBackupCodes int        `json:"remaining_backup_codes"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
}

// TwoFactorService drives the DISABLED -> PENDING_SETUP -> ENABLED state
// machine. Disable and regeneration demand a live TOTP code; backup codes
// are only good for login.
type TwoFactorService interface {
	Status(ctx context.Context, userID uuid.UUID) (*TwoFactorStatus, error)
	Setup(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error)
	VerifyEnable(ctx context.Context, userID uuid.UUID, code string) error
	ValidateLogin(ctx context.Context, userID uuid.UUID, code string) (usedBackupCode bool, err error)
	Disable(ctx context.Context, userID uuid.UUID, code string) error
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, code string) ([]string, error)
}

type twoFactorService struct {
	repo     repository.TwoFactorRepository
	userRepo repository.UserRepository
	issuer   string
	salt     string
}

// NewTwoFactorService creates a new TwoFactorService
func NewTwoFactorService(repo repository.TwoFactorRepository, userRepo repository.UserRepository, issuer, salt string) TwoFactorService {
	return &twoFactorService{repo: repo, userRepo: userRepo, issuer: issuer, salt: salt}
}

// Status reports whether 2FA is enabled and how many backup codes remain
func (s *twoFactorService) Status(ctx context.Context, userID uuid.UUID) (*TwoFactorStatus, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &TwoFactorStatus{}, nil
	}
	return &TwoFactorStatus{
		IsEnabled:            record.IsEnabled,
		RemainingBackupCodes: record.RemainingBackupCodes(),
		VerifiedAt:           record.VerifiedAt,
	}, nil
}

// Setup generates a fresh secret, QR provisioning image, and backup
// codes, and stores the record in the pending (not yet trusted) state.
// Re-running setup before verification replaces the pending record.
func (s *twoFactorService) Setup(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record != nil && record.IsEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName(user),
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	codes, hashes, err := s.newBackupCodes(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.Upsert(ctx, &model.TwoFactorAuth{
		UserID:      userID,
		Secret:      key.Secret(),
		BackupCodes: hashes,
		IsEnabled:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return nil, err
	}

	qrCode, err := qrDataURI(key.URL())
	if err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCode:          qrCode,
		BackupCodes:     codes,
	}, nil
}

// VerifyEnable completes setup: a valid code proves the authenticator
// holds the secret, and only then is the record trusted
func (s *twoFactorService) VerifyEnable(ctx context.Context, userID uuid.UUID, code string) error {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrTwoFactorNotSetUp
	}
	if record.IsEnabled {
		return ErrTwoFactorAlreadyEnabled
	}
	if !s.validTOTP(record.Secret, code) {
		return ErrTwoFactorCodeInvalid
	}
	return s.repo.Enable(ctx, userID, time.Now())
}

// ValidateLogin checks a second factor at login. With 2FA disabled it
// short-circuits to valid. The time-based code is tried first, then the
// remaining backup codes; a matching backup code is consumed on the spot.
func (s *twoFactorService) ValidateLogin(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil || !record.IsEnabled {
		return false, nil
	}
	if code == "" {
		return false, ErrTwoFactorRequired
	}

	if s.validTOTP(record.Secret, code) {
		return false, nil
	}

	hash := utils.HashCode(s.salt, userID.String(), canonicalBackupCode(code))
	consumed, err := s.repo.ConsumeBackupCode(ctx, userID, hash)
	if err != nil {
		return false, err
	}
	if consumed {
		return true, nil
	}
	return false, ErrTwoFactorCodeInvalid
}

// Disable turns 2FA off. Requires a live time-based code; a backup code
// is deliberately not enough for this.
func (s *twoFactorService) Disable(ctx context.Context, userID uuid.UUID, code string) error {
	record, err := s.requireEnabled(ctx, userID)
	if err != nil {
		return err
	}
	if !s.validTOTP(record.Secret, code) {
		return ErrTwoFactorCodeInvalid
	}
	return s.repo.Delete(ctx, userID)
}

// RegenerateBackupCodes replaces the batch. Same proof-of-possession rule
// as Disable.
func (s *twoFactorService) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	record, err := s.requireEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.validTOTP(record.Secret, code) {
		return nil, ErrTwoFactorCodeInvalid
	}

	codes, hashes, err := s.newBackupCodes(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *twoFactorService) requireEnabled(ctx context.Context, userID uuid.UUID) (*model.TwoFactorAuth, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsEnabled {
		return nil, ErrTwoFactorNotSetUp
	}
	return record, nil
}

func (s *twoFactorService) validTOTP(secret, code string) bool {
	valid, err := totp.ValidateCustom(strings.TrimSpace(code), secret, time.Now(), totpOpts)
	return err == nil && valid
}

func (s *twoFactorService) newBackupCodes(userID uuid.UUID) ([]string, []string, error) {
	codes := make([]string, 0, backupCodeCount)
	hashes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := utils.GenerateHexCode(backupCodeLength)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes = append(codes, code)
		hashes = append(hashes, utils.HashCode(s.salt, userID.String(), code))
	}
	return codes, hashes, nil
}

func canonicalBackupCode(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
}

func accountName(user *model.User) string {
	if user.Email != nil {
		return *user.Email
	}
	if user.Phone != nil {
		return *user.Phone
	}
	return user.ID.String()
}

func qrDataURI(provisioningURL string) (string, error) {
	code, err := qr.Encode(provisioningURL, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to scale qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
