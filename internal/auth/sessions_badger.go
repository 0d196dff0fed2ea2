// ABOUTME: Badger-backed sessions: opaque tokens stored in an embedded KV with TTL.
// ABOUTME: Default backend; survives restarts when opened on disk.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

// BadgerSessions stores token → username entries that expire after ttl.
type BadgerSessions struct {
	db  *badger.DB
	ttl time.Duration
}

var _ Sessions = (*BadgerSessions)(nil)

// OpenBadgerSessions opens (or creates) a session store at dir.
// An empty dir keeps sessions in memory only.
func OpenBadgerSessions(dir string, ttl time.Duration, log *logrus.Logger) (*BadgerSessions, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if log != nil {
		opts = opts.WithLogger(log)
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &BadgerSessions{db: db, ttl: ttl}, nil
}

// Issue creates a session for username.
func (s *BadgerSessions) Issue(_ context.Context, username string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(sessionKey(token)), []byte(username)).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

// Resolve returns the username a live token was issued for.
func (s *BadgerSessions) Resolve(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	var username string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey(token)))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		username = string(v)
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return username, nil
}

// Revoke deletes a session. Unknown tokens are ignored.
func (s *BadgerSessions) Revoke(_ context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKey(token)))
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Close closes the underlying badger database.
func (s *BadgerSessions) Close() error {
	return s.db.Close()
}
