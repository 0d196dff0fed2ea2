// ABOUTME: Repository interface for fitlog data storage.
// ABOUTME: Defines the record store and credential persistence contract.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/models"
)

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("already exists")
	// ErrSingletonKind is returned when a goal is written with entry semantics or vice versa.
	ErrSingletonKind = errors.New("goal records are upsert-only")
	// ErrMissingOwner is returned when a record write has no owner.
	ErrMissingOwner = errors.New("record owner is required")
)

// Repository defines the storage interface for fitlog data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// Record operations
	Insert(ctx context.Context, owner string, body models.Body, at string, now time.Time) (uuid.UUID, error)
	UpsertGoal(ctx context.Context, owner string, body models.Body, now time.Time) error
	FindOne(ctx context.Context, kind models.Kind, owner string, f Filter) (*models.Record, error)
	Get(ctx context.Context, id uuid.UUID, owner string) (*models.Record, error)
	FindMany(q Query) *Records
	ListAll(owner string) *Records
	Update(ctx context.Context, id uuid.UUID, owner string, body models.Body) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, owner string) (bool, error)
	DeleteAll(ctx context.Context, owner string) (int64, error)

	// Lifecycle
	Close() error
}

// Filter narrows FindOne beyond owner and kind.
type Filter struct {
	ID  *uuid.UUID
	Day *models.DayOfWeek
}
