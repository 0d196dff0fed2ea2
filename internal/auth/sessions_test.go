// ABOUTME: Tests for the session backends.
// ABOUTME: Badger runs in memory, JWT uses an injected clock and redis runs against miniredis.
package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestBadgerSessions(t *testing.T) {
	s, err := OpenBadgerSessions("", time.Hour, nil)
	if err != nil {
		t.Fatalf("OpenBadgerSessions failed: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	token, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(token) < 40 {
		t.Errorf("token looks too short: %q", token)
	}

	user, err := s.Resolve(ctx, token)
	if err != nil || user != "alice" {
		t.Fatalf("Resolve = %q, %v; want alice", user, err)
	}

	other, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if other == token {
		t.Error("tokens must be unique per issue")
	}

	if err := s.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := s.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after revoke, got %v", err)
	}
	if _, err := s.Resolve(ctx, other); err != nil {
		t.Errorf("revoking one session affected another: %v", err)
	}
}

func TestBadgerSessionsUnknownToken(t *testing.T) {
	s, err := OpenBadgerSessions("", time.Hour, nil)
	if err != nil {
		t.Fatalf("OpenBadgerSessions failed: %v", err)
	}
	defer s.Close()

	for _, tok := range []string{"", "nope", strings.Repeat("a", 43)} {
		if _, err := s.Resolve(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Resolve(%q): expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestBadgerSessionsPersistOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerSessions(dir, time.Hour, nil)
	if err != nil {
		t.Fatalf("OpenBadgerSessions failed: %v", err)
	}
	token, err := s.Issue(ctx, "bob")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_ = s.Close()

	s, err = OpenBadgerSessions(dir, time.Hour, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if user, err := s.Resolve(ctx, token); err != nil || user != "bob" {
		t.Errorf("Resolve after reopen = %q, %v", user, err)
	}
}

func TestJWTSessions(t *testing.T) {
	s, err := NewJWTSessions("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTSessions failed: %v", err)
	}
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	user, err := s.Resolve(ctx, token)
	if err != nil || user != "alice" {
		t.Fatalf("Resolve = %q, %v; want alice", user, err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := s.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestJWTSessionsRejectsForeignSignature(t *testing.T) {
	a, _ := NewJWTSessions("secret-a", time.Hour)
	b, _ := NewJWTSessions("secret-b", time.Hour)
	ctx := context.Background()

	token, err := a.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := a.Resolve(ctx, "not.a.jwt"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for garbage, got %v", err)
	}
}

func TestJWTSessionsRequiresSecret(t *testing.T) {
	if _, err := NewJWTSessions("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestDialRedisSessionsUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := DialRedisSessions(ctx, "127.0.0.1:1", time.Hour); err == nil {
		t.Error("expected error dialing a closed port")
	}
}

func newMiniredisSessions(t *testing.T, ttl time.Duration) (*RedisSessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisSessions(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisSessions(t *testing.T) {
	s, mr := newMiniredisSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if got := mr.TTL(sessionKey(token)); got != time.Hour {
		t.Errorf("TTL = %v, want 1h", got)
	}

	user, err := s.Resolve(ctx, token)
	if err != nil || user != "alice" {
		t.Fatalf("Resolve = %q, %v; want alice", user, err)
	}

	other, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if other == token {
		t.Error("tokens must be unique per issue")
	}

	if err := s.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if mr.Exists(sessionKey(token)) {
		t.Error("revoked session still stored")
	}
	if _, err := s.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after revoke, got %v", err)
	}
	if _, err := s.Resolve(ctx, other); err != nil {
		t.Errorf("revoking one session affected another: %v", err)
	}
	if err := s.Revoke(ctx, ""); err != nil {
		t.Errorf("Revoke of empty token: %v", err)
	}
}

func TestRedisSessionsUnknownToken(t *testing.T) {
	s, _ := newMiniredisSessions(t, time.Hour)

	for _, tok := range []string{"", "nope", strings.Repeat("a", 43)} {
		if _, err := s.Resolve(context.Background(), tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Resolve(%q): expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestRedisSessionsExpire(t *testing.T) {
	s, mr := newMiniredisSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "bob")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	mr.FastForward(59 * time.Minute)
	if _, err := s.Resolve(ctx, token); err != nil {
		t.Fatalf("session expired early: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := s.Resolve(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated after expiry, got %v", err)
	}
}

func TestRedisSessionsServerDown(t *testing.T) {
	s, mr := newMiniredisSessions(t, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "carol")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	mr.Close()

	_, err = s.Resolve(ctx, token)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected a lookup error distinct from ErrUnauthenticated, got %v", err)
	}
}

func TestNewRedisSessionsDefaultTTL(t *testing.T) {
	s, mr := newMiniredisSessions(t, 0)

	token, err := s.Issue(context.Background(), "dave")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if got := mr.TTL(sessionKey(token)); got != DefaultSessionTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultSessionTTL)
	}
}
