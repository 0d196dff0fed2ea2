// ABOUTME: Credential store: registers users with bcrypt hashes and verifies logins.
// ABOUTME: Persistence is delegated to a UserStore (the SQLite storage layer in production).
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAlreadyExists is returned when registering a username that is taken.
	ErrAlreadyExists = errors.New("username already exists")
	// ErrInvalidInput is returned for an empty username or password.
	ErrInvalidInput = errors.New("username and password are required")
	// ErrInvalidCredentials is returned when a login does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore persists users. storage.DB satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Credentials hashes and checks passwords against a UserStore.
type Credentials struct {
	store UserStore
	cost  int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentials creates a credential store using bcrypt.DefaultCost.
func NewCredentials(store UserStore) *Credentials {
	return NewCredentialsWithCost(store, bcrypt.DefaultCost)
}

// NewCredentialsWithCost creates a credential store with an explicit bcrypt cost.
func NewCredentialsWithCost(store UserStore, cost int) *Credentials {
	return &Credentials{store: store, cost: cost}
}

// Register creates a user and returns its ID.
// Usernames match exactly: "alice" and "Alice" are different users.
func (c *Credentials) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return uuid.Nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.NewUser(username, string(hash))
	if err := c.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return uuid.Nil, ErrAlreadyExists
		}
		return uuid.Nil, fmt.Errorf("register %s: %w", username, err)
	}
	return u.ID, nil
}

// Verify reports whether password matches the stored hash for username.
// A wrong password or unknown user is (uuid.Nil, false, nil); only store
// failures return an error.
func (c *Credentials) Verify(ctx context.Context, username, password string) (uuid.UUID, bool, error) {
	u, err := c.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn one comparison so absent users cost the same as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(c.dummy(), []byte(password))
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("verify %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return uuid.Nil, false, nil
	}
	return u.ID, true, nil
}

func (c *Credentials) dummy() []byte {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fitlog-dummy-password"), c.cost)
	})
	return c.dummyHash
}
