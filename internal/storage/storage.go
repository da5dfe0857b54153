// Package storage defines the Storage interface: the contract every
// database backend must satisfy.
//
// Handlers depend on this interface, never on a concrete driver, so the
// SQLite implementation can be swapped without touching the HTTP layer.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/users-api/internal/types"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a write would give two users the
	// same email.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Storage is the persistence contract for users.
type Storage interface {
	// CreateUser inserts a user and returns its assigned id.
	CreateUser(ctx context.Context, name, email string, age int) (int64, error)

	GetUserByID(ctx context.Context, id int64) (types.User, error)

	// GetUsers returns every user in the store's natural order.
	GetUsers(ctx context.Context) ([]types.User, error)

	// UpdateUserByID applies the non-zero fields of upd.
	UpdateUserByID(ctx context.Context, id int64, upd types.UpdateUserRequest) error

	DeleteUserByID(ctx context.Context, id int64) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
