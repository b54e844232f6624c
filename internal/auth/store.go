package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// Store keeps short-lived authentication state: pending one-time access codes
// and revoked session IDs. Entries expire on their own.
type Store interface {
	PutOTAC(ctx context.Context, user, hash string, ttl time.Duration) error
	GetOTAC(ctx context.Context, user string) (string, error)
	// ConsumeOTAC deletes the pending code only if it still holds hash and
	// reports whether this call removed it.
	ConsumeOTAC(ctx context.Context, user, hash string) (bool, error)
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Usernames are case-insensitive
func otacKey(user string) string {
	return fmt.Sprintf("otac:%s", strings.ToLower(user))
}

func revokedKey(sessionID string) string {
	return fmt.Sprintf("revoked:%s", sessionID)
}
