package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/terra-dev/terra/internal/assert"
)

const (
	otacLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// OTACLength is the number of letters in a one-time access code
	OTACLength = 5
)

// GenerateOTAC returns a random one-time access code made of ASCII letters
func GenerateOTAC() (string, error) {
	max := big.NewInt(int64(len(otacLetters)))
	b := make([]byte, OTACLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b[i] = otacLetters[n.Int64()]
	}

	code := string(b)
	assert.Length(code, OTACLength)
	return code, nil
}

// HashOTAC hashes a code for storage
func HashOTAC(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(hash), nil
}

// VerifyOTAC reports whether code matches a stored hash. Empty codes never match.
func VerifyOTAC(code, hash string) bool {
	if code == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
