// ABOUTME: User persistence for the credential store.
// ABOUTME: Username uniqueness is enforced by a unique index, reported as ErrDuplicate.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateUser stores a new user. A taken username yields ErrDuplicate.
func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		u.ID.String(),
		u.Username,
		u.PasswordHash,
		formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Username, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`
	return d.scanUser(d.db.QueryRowContext(ctx, query, id.String()))
}

// GetUserByUsername retrieves a user by exact (case-sensitive) username.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`
	return d.scanUser(d.db.QueryRowContext(ctx, query, username))
}

func (d *DB) scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var idStr, createdAt string

	err := row.Scan(&idStr, &u.Username, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.ID, _ = uuid.Parse(idStr)
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
