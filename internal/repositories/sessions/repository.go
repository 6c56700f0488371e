// Package sessions declares the repository contract for authentication
// sessions and provides its MongoDB-backed implementation.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// Repository defines persistence operations for session records. A user has
// at most one session, maintained by atomic upsert keyed on user_id.
type Repository interface {
	// Upsert inserts a session for userID or, if one exists, overwrites its
	// token. The backend performs this as a single atomic operation; two
	// concurrent upserts for the same user must leave exactly one record.
	// An empty userID is rejected with common.ErrInvalidArgument; backend
	// failures yield common.ErrOperationFailed with the cause attached.
	Upsert(ctx context.Context, userID, jwt string) error

	// FindByUserID returns the session for userID, or (nil, nil) when absent.
	FindByUserID(ctx context.Context, userID string) (*models.Session, error)

	// DeleteByUserID removes at most one session and reports whether exactly
	// one record was deleted. Backend errors are downgraded to false:
	// session cleanup is best-effort and must not fail the caller's broader
	// workflow.
	DeleteByUserID(ctx context.Context, userID string) bool

	// Delete removes at most one session for userID and returns the number
	// of records removed. Unlike DeleteByUserID, backend failures propagate
	// as common.ErrOperationFailed with the cause attached, so cross-store
	// cleanup can surface a partial failure instead of masking it.
	Delete(ctx context.Context, userID string) (int64, error)
}
