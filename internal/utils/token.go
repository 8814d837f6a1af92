package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenFamily distinguishes the independent bearer-token families. A
// token issued for one family is never accepted by another family's
// verifier: each family signs with its own derived key and the family is
// also embedded in the claims and checked on verify.
type TokenFamily string

const (
	FamilySession    TokenFamily = "session"    // password login, 24h
	FamilyReset      TokenFamily = "reset"      // password reset, 1h
	FamilyAccess     TokenFamily = "access"     // OTP/OAuth login, 15m
	FamilyRefresh    TokenFamily = "refresh"    // OTP/OAuth login, 7d
	FamilySuperAdmin TokenFamily = "superadmin" // super-admin console, 24h
)

// SuperAdminTokenPrefix marks super-admin tokens on the wire.
const SuperAdminTokenPrefix = "sa_"

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

var familyTTL = map[TokenFamily]time.Duration{
	FamilySession:    24 * time.Hour,
	FamilyReset:      time.Hour,
	FamilyAccess:     15 * time.Minute,
	FamilyRefresh:    7 * 24 * time.Hour,
	FamilySuperAdmin: 24 * time.Hour,
}

// TTL returns the issue lifetime for the family.
func (f TokenFamily) TTL() time.Duration {
	return familyTTL[f]
}

// AuthClaims is the payload shared by every token family. Permissions is
// only populated for super-admin tokens (a snapshot taken at issue time).
type AuthClaims struct {
	Family      TokenFamily     `json:"family"`
	UserID      string          `json:"user_id"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed bearer tokens for all families.
type TokenCodec struct {
	master []byte
}

// NewTokenCodec creates a TokenCodec from the server signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{master: []byte(secret)}
}

// familyKey derives the per-family HS256 signing key from the master
// secret, so families stay isolated even though they share one secret.
func (c *TokenCodec) familyKey(family TokenFamily) []byte {
	mac := hmac.New(sha256.New, c.master)
	mac.Write([]byte(family))
	return mac.Sum(nil)
}

// Issue signs a token for the given family with the family's default TTL.
func (c *TokenCodec) Issue(family TokenFamily, userID uuid.UUID, role string, permissions map[string]bool) (string, error) {
	return c.IssueWithTTL(family, userID, role, permissions, familyTTL[family])
}

// IssueWithTTL signs a token with an explicit lifetime.
func (c *TokenCodec) IssueWithTTL(family TokenFamily, userID uuid.UUID, role string, permissions map[string]bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AuthClaims{
		Family:      family,
		UserID:      userID.String(),
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.familyKey(family))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	if family == FamilySuperAdmin {
		signed = SuperAdminTokenPrefix + signed
	}
	return signed, nil
}

// Verify checks signature, expiry, and family of the token. Failures are
// collapsed to ErrTokenInvalid / ErrTokenExpired; callers translate both
// to 401 without exposing the parse detail.
func (c *TokenCodec) Verify(family TokenFamily, tokenString string) (*AuthClaims, error) {
	if family == FamilySuperAdmin {
		if !strings.HasPrefix(tokenString, SuperAdminTokenPrefix) {
			return nil, ErrTokenInvalid
		}
		tokenString = strings.TrimPrefix(tokenString, SuperAdminTokenPrefix)
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.familyKey(family), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Family != family {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParsedUserID returns the subject as a UUID.
func (cl *AuthClaims) ParsedUserID() (uuid.UUID, error) {
	return uuid.Parse(cl.UserID)
}
