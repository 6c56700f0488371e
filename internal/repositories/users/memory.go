package users

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests. A single mutex
// stands in for the backend's per-operation atomicity.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	if user.Email == "" {
		return fmt.Errorf("%w: email must not be empty", common.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return fmt.Errorf("%w: user with email %q already exists", common.ErrDuplicate, user.Email)
	}

	stored := *user
	stored.Preferences = maps.Clone(user.Preferences)
	r.users[user.Email] = stored
	return nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	found := stored
	found.Preferences = maps.Clone(stored.Preferences)
	return &found, nil
}

func (r *MemoryRepository) ReplacePreferences(ctx context.Context, email string, preferences map[string]any) error {
	if preferences == nil {
		return fmt.Errorf("%w: preferences must not be nil", common.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[email]
	if !ok {
		// field-level update of a missing record is a no-op, as in the backend
		return nil
	}
	stored.Preferences = maps.Clone(preferences)
	r.users[email] = stored
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[email]; !ok {
		return 0, nil
	}
	delete(r.users, email)
	return 1, nil
}
