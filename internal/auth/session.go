package auth

import "time"

// Authentication methods recorded on SessionData
const (
	MethodCookie = "cookie"
	MethodBearer = "bearer"
)

// SessionData represents the authenticated session context for a request
type SessionData struct {
	ID        string    `json:"id"` // jti of the session token, empty for bearer
	User      string    `json:"user"`
	Tier      Tier      `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
	Method    string    `json:"method"`
}

// Remaining returns how long the session stays valid from now.
func (s *SessionData) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
