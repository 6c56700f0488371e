// Package users declares the repository contract for account records and
// provides its MongoDB-backed implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// Repository defines persistence operations for user account records.
// Absence is a valid result for lookups, never an error.
type Repository interface {
	// Create persists a new user. The write must be durable (acknowledged
	// by a majority of replicas). A uniqueness violation on email yields
	// common.ErrDuplicate; any other backend failure yields
	// common.ErrOperationFailed with the cause attached.
	Create(ctx context.Context, user *models.User) error

	// FindByEmail returns the matching user, or (nil, nil) when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ReplacePreferences sets the preferences field to the given mapping,
	// leaving all other fields untouched. A nil mapping is rejected with
	// common.ErrInvalidArgument before the store is touched.
	ReplacePreferences(ctx context.Context, email string, preferences map[string]any) error

	// Delete removes at most one user matching email and returns the number
	// of records removed. Deleting an absent user is not an error; a nil
	// error means the write was acknowledged.
	Delete(ctx context.Context, email string) (int64, error)
}
