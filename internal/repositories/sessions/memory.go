package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests. The mutex makes
// each operation atomic, mirroring the backend's per-operation guarantee.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]models.Session)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, userID, jwt string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id must not be empty", common.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[userID]
	if !ok {
		stored = models.Session{UserID: userID}
	}
	stored.JWT = jwt
	r.sessions[userID] = stored
	return nil
}

func (r *MemoryRepository) FindByUserID(ctx context.Context, userID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	found := stored
	return &found, nil
}

func (r *MemoryRepository) DeleteByUserID(ctx context.Context, userID string) bool {
	deleted, err := r.Delete(ctx, userID)
	return err == nil && deleted == 1
}

func (r *MemoryRepository) Delete(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[userID]; !ok {
		return 0, nil
	}
	delete(r.sessions, userID)
	return 1, nil
}
