// ABOUTME: Stateless HS256 JWT sessions.
// ABOUTME: Tokens carry the username as subject; revocation is not supported.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSessions signs and verifies self-contained session tokens.
type JWTSessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ Sessions = (*JWTSessions)(nil)

// NewJWTSessions creates a JWT session provider. The secret must not be empty.
func NewJWTSessions(secret string, ttl time.Duration) (*JWTSessions, error) {
	if secret == "" {
		return nil, errors.New("jwt sessions: secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWTSessions{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for username that expires after the TTL.
func (s *JWTSessions) Issue(_ context.Context, username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies the signature and expiry and returns the subject.
func (s *JWTSessions) Resolve(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Revoke is a no-op: JWT sessions end when they expire.
func (s *JWTSessions) Revoke(context.Context, string) error {
	return nil
}

// Close is a no-op.
func (s *JWTSessions) Close() error {
	return nil
}
