package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var ErrSecretNotInitialized = errors.New("session secret not initialized")

// SessionClaims are the claims carried by the _auth cookie
type SessionClaims struct {
	User string `json:"user"`
	Tier Tier   `json:"tier"`
	jwt.RegisteredClaims
}

// Signer issues and validates session tokens
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer for HS256 session tokens valid for ttl
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// GenerateToken creates a signed session token for a user at the given tier
func (s *Signer) GenerateToken(user string, tier Tier) (string, *SessionClaims, error) {
	if len(s.secret) == 0 {
		return "", nil, ErrSecretNotInitialized
	}

	now := s.now()
	claims := &SessionClaims{
		User: user,
		Tier: tier,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken validates a session token and returns its claims
func (s *Signer) ValidateToken(tokenString string) (*SessionClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Session converts validated claims into request session data
func (c *SessionClaims) Session() *SessionData {
	data := &SessionData{
		ID:     c.ID,
		User:   c.User,
		Tier:   c.Tier,
		Method: MethodCookie,
	}
	if c.ExpiresAt != nil {
		data.ExpiresAt = c.ExpiresAt.Time
	}
	return data
}
