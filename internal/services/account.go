// Package services contains the coordinating business logic for account
// lifecycle operations. AccountService composes the user and session
// repositories, applies the durability and error-classification policy, and
// owns no persistent state itself.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/sessions"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
)

// AccountService provides account-management operations:
//   - CreateAccount / RemoveAccount: account lifecycle
//   - StartSession / EndSession: session lifecycle
//   - GetAccount / GetSession: lookups
//   - UpdatePreferences: per-user preference replacement
//
// It is safe for concurrent use: all consistency guarantees come from the
// backend store's per-operation atomicity.
type AccountService struct {
	users    users.Repository
	sessions sessions.Repository
	logger   logging.Logger
}

// NewAccountService constructs an AccountService over the given repositories.
func NewAccountService(u users.Repository, s sessions.Repository, logger logging.Logger) *AccountService {
	return &AccountService{users: u, sessions: s, logger: logger}
}

// CreateAccount persists a new user. A uniqueness conflict is re-signalled
// as common.ErrAccountExists carrying the offending email, so callers get a
// stable, user-presentable error independent of backend error codes.
func (s *AccountService) CreateAccount(ctx context.Context, user *models.User) error {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return fmt.Errorf("%w: %s", common.ErrAccountExists, user.Email)
		}
		return err
	}
	return nil
}

// StartSession creates or refreshes the session for userID, binding it to
// the given opaque token. Any store error is re-signalled as
// common.ErrSessionCreate with the cause attached.
//
// The token value is not checked for reuse across users: sessions are keyed
// strictly by user_id and the store holds no uniqueness constraint on the
// token itself.
func (s *AccountService) StartSession(ctx context.Context, userID, jwt string) error {
	if err := s.sessions.Upsert(ctx, userID, jwt); err != nil {
		return fmt.Errorf("%w: %w", common.ErrSessionCreate, err)
	}
	return nil
}

// EndSession removes the session for userID and reports whether exactly one
// record was deleted. Cleanup is best-effort; backend errors surface as a
// false return, never as a hard failure.
func (s *AccountService) EndSession(ctx context.Context, userID string) bool {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// GetAccount returns the user for email, or (nil, nil) when absent.
func (s *AccountService) GetAccount(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// GetSession returns the session for userID, or (nil, nil) when absent.
func (s *AccountService) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	return s.sessions.FindByUserID(ctx, userID)
}

// RemoveAccount deletes the user record and the associated session, which is
// keyed by the same identifier value as the email. The two deletions are
// separate operations, not a transaction: a backend error on either step is
// surfaced with the cause attached, and when the session deletion fails
// after the user record is already gone the partial failure is returned
// alongside ok=true so the caller can retry the cleanup. A bare count
// mismatch between the two stores is only a warning, since the session may
// legitimately already be absent. The returned bool reports whether the
// user deletion was acknowledged.
func (s *AccountService) RemoveAccount(ctx context.Context, email string) (bool, error) {
	deletedUsers, err := s.users.Delete(ctx, email)
	if err != nil {
		return false, fmt.Errorf("removing account %q: %w", email, err)
	}

	deletedSessions, err := s.sessions.Delete(ctx, email)
	if err != nil {
		return true, fmt.Errorf("removing sessions for account %q: %w", email, err)
	}

	if deletedUsers != deletedSessions {
		s.logger.Warn(ctx, "user and session deletion counts disagree",
			"email", email,
			"deleted_users", deletedUsers,
			"deleted_sessions", deletedSessions)
	}

	return true, nil
}

// UpdatePreferences replaces the stored preferences of the user identified
// by email. A nil mapping is rejected with common.ErrInvalidArgument before
// the store is touched.
func (s *AccountService) UpdatePreferences(ctx context.Context, email string, preferences map[string]any) error {
	if preferences == nil {
		return fmt.Errorf("%w: preferences must not be nil", common.ErrInvalidArgument)
	}
	return s.users.ReplacePreferences(ctx, email, preferences)
}
