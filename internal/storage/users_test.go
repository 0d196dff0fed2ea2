// ABOUTME: Tests for user persistence.
// ABOUTME: Verifies exact-match lookup and duplicate username detection.
package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/fitlog/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := models.NewUser("alice", "hash")
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, u.ID)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want hash", got.PasswordHash)
	}

	byID, err := db.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("Username = %s, want alice", byID.Username)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateUser(ctx, models.NewUser("alice", "h1")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	err := db.CreateUser(ctx, models.NewUser("alice", "h2"))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestUsernamesAreCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateUser(ctx, models.NewUser("alice", "h1")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := db.CreateUser(ctx, models.NewUser("Alice", "h2")); err != nil {
		t.Fatalf("CreateUser with different case failed: %v", err)
	}

	if _, err := db.GetUserByUsername(ctx, "ALICE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for ALICE, got %v", err)
	}
}
