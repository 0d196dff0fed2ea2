// ABOUTME: Tests for credential registration and verification.
// ABOUTME: Runs against a real temp SQLite store with a cheap bcrypt cost.
package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

func setupCredentials(t *testing.T) *Credentials {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCredentialsWithCost(db, bcrypt.MinCost)
}

func TestRegisterThenVerify(t *testing.T) {
	c := setupCredentials(t)
	ctx := context.Background()

	id, err := c.Register(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok, err := c.Verify(ctx, "alice", "pw1")
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v; want true, nil", ok, err)
	}
	if got != id {
		t.Errorf("Verify returned id %v, want %v", got, id)
	}
}

func TestVerifyRejects(t *testing.T) {
	c := setupCredentials(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "nobody", "pw1"},
		{"different case", "Alice", "pw1"},
		{"empty password", "alice", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok, err := c.Verify(ctx, tt.username, tt.password)
			if err != nil {
				t.Fatalf("Verify returned error: %v", err)
			}
			if ok || id != uuid.Nil {
				t.Errorf("Verify(%q, %q) = %v, %v; want nil, false", tt.username, tt.password, id, ok)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	c := setupCredentials(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := c.Register(ctx, "alice", "pw2"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// The original password still works.
	if _, ok, _ := c.Verify(ctx, "alice", "pw1"); !ok {
		t.Error("original password no longer verifies")
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	c := setupCredentials(t)
	ctx := context.Background()

	for _, tc := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"alice", ""}} {
		if _, err := c.Register(ctx, tc[0], tc[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%q, %q): expected ErrInvalidInput, got %v", tc[0], tc[1], err)
		}
	}
}

func TestPasswordIsHashed(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	defer db.Close()

	c := NewCredentialsWithCost(db, bcrypt.MinCost)
	if _, err := c.Register(context.Background(), "alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	u, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if u.PasswordHash == "pw1" {
		t.Error("password stored in plaintext")
	}
}

type failingStore struct{}

func (failingStore) CreateUser(context.Context, *models.User) error {
	return errors.New("disk on fire")
}

func (failingStore) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, errors.New("disk on fire")
}

func TestStoreErrorsPropagate(t *testing.T) {
	c := NewCredentialsWithCost(failingStore{}, bcrypt.MinCost)
	ctx := context.Background()

	if _, err := c.Register(ctx, "alice", "pw"); err == nil || errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
	if _, _, err := c.Verify(ctx, "alice", "pw"); err == nil {
		t.Error("expected store error from Verify")
	}
}
