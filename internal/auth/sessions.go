// ABOUTME: Session/identity provider contract shared by the badger, JWT and redis backends.
// ABOUTME: A session maps an opaque bearer token to the username it was issued for.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrUnauthenticated is returned for unknown, expired, revoked or malformed tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Sessions issues and resolves session tokens.
type Sessions interface {
	Issue(ctx context.Context, username string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	Close() error
}

// newToken returns 32 random bytes, URL-safe base64 encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func sessionKey(token string) string {
	return "session:" + token
}
