package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
)

// Manager ties together code issuance, login, logout and session validation
type Manager struct {
	store   Store
	signer  *Signer
	roster  *Roster
	testKey string
	otacTTL time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewManager creates an authorization manager. An empty testKey disables bearer access.
func NewManager(store Store, signer *Signer, roster *Roster, testKey string, otacTTL time.Duration, logger zerolog.Logger) *Manager {
	if roster == nil {
		roster = &Roster{}
	}
	return &Manager{
		store:   store,
		signer:  signer,
		roster:  roster,
		testKey: testKey,
		otacTTL: otacTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// SessionTTL is the lifetime of issued session cookies
func (m *Manager) SessionTTL() time.Duration {
	return m.signer.TTL()
}

// IssueOTAC creates a one-time access code for user, replacing any pending one
func (m *Manager) IssueOTAC(ctx context.Context, user string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", fmt.Errorf("user is required")
	}

	code, err := GenerateOTAC()
	if err != nil {
		return "", err
	}
	hash, err := HashOTAC(code)
	if err != nil {
		return "", err
	}
	if err := m.store.PutOTAC(ctx, user, hash, m.otacTTL); err != nil {
		return "", err
	}

	m.logger.Info().Str("user", user).Dur("ttl", m.otacTTL).Msg("Issued one-time access code")
	return code, nil
}

// Login exchanges a valid one-time access code for a session token. The code is consumed.
func (m *Manager) Login(ctx context.Context, user, code string) (string, *SessionData, error) {
	user = strings.TrimSpace(user)
	if user == "" || code == "" {
		return "", nil, ErrInvalidCredentials
	}

	hash, err := m.store.GetOTAC(ctx, user)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !VerifyOTAC(code, hash) {
		return "", nil, ErrInvalidCredentials
	}

	// A concurrent login with the same code may have won the race
	consumed, err := m.store.ConsumeOTAC(ctx, user, hash)
	if err != nil {
		return "", nil, err
	}
	if !consumed {
		return "", nil, ErrInvalidCredentials
	}

	tier := m.roster.TierFor(user)
	token, claims, err := m.signer.GenerateToken(user, tier)
	if err != nil {
		return "", nil, err
	}

	return token, claims.Session(), nil
}

// Authenticate validates a session token and rejects revoked sessions
func (m *Manager) Authenticate(ctx context.Context, token string) (*SessionData, error) {
	claims, err := m.signer.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	return claims.Session(), nil
}

// Logout revokes the session until it would have expired anyway
func (m *Manager) Logout(ctx context.Context, session *SessionData) error {
	if session == nil || session.ID == "" {
		return nil
	}
	return m.store.Revoke(ctx, session.ID, session.Remaining(m.now()))
}

// BearerValid reports whether key matches the configured test key
func (m *Manager) BearerValid(key string) bool {
	if m.testKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.testKey)) == 1
}
