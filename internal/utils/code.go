package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a random code of the given number of
// decimal digits, zero-padded (e.g. "042913" for 6 digits).
func GenerateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// GenerateHexCode returns a random lowercase hex string of the given
// length (length must be even).
func GenerateHexCode(length int) (string, error) {
	raw := make([]byte, length/2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashCode produces the storage hash for short-lived codes (OTP codes,
// backup codes): SHA-256 over salt and the given parts. Short numeric
// codes gain nothing from bcrypt here because the attempt counter, not
// hash cost, is what bounds guessing.
func HashCode(salt string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
