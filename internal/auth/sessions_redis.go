// ABOUTME: Redis-backed sessions for deployments running several fitlog processes.
// ABOUTME: Tokens are opaque keys with a server-side TTL.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSessions stores sessions in redis.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Sessions = (*RedisSessions)(nil)

// NewRedisSessions wraps an existing client.
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessions{client: client, ttl: ttl}
}

// DialRedisSessions connects to addr and checks the connection.
func DialRedisSessions(ctx context.Context, addr string, ttl time.Duration) (*RedisSessions, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisSessions(client, ttl), nil
}

// Issue creates a session for username.
func (s *RedisSessions) Issue(ctx context.Context, username string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKey(token), username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

// Resolve returns the username a live token was issued for.
func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	username, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return username, nil
}

// Revoke deletes a session.
func (s *RedisSessions) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisSessions) Close() error {
	return s.client.Close()
}
