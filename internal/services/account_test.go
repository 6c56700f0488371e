package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/sessions"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
)

func newTestService(t *testing.T) (*AccountService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	svc := NewAccountService(users.NewMemoryRepository(), sessions.NewMemoryRepository(), logger)
	return svc, &buf
}

// stubUsers overrides Delete to inject backend failures.
type stubUsers struct {
	users.Repository
	deleteErr error
}

func (s *stubUsers) Delete(ctx context.Context, email string) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.Repository.Delete(ctx, email)
}

// stubSessions overrides Upsert and Delete to inject store failures.
type stubSessions struct {
	sessions.Repository
	upsertErr error
	deleteErr error
}

func (s *stubSessions) Upsert(ctx context.Context, userID, jwt string) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.Repository.Upsert(ctx, userID, jwt)
}

func (s *stubSessions) Delete(ctx context.Context, userID string) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.Repository.Delete(ctx, userID)
}

func TestAccountService_CreateAccount_ThenGetAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := &models.User{
		Email:          "norberto@mflix.com",
		Name:           "Norberto",
		HashedPassword: "$2a$12$x",
		Preferences:    map[string]any{"color": "green"},
	}
	require.NoError(t, svc.CreateAccount(ctx, user))

	got, err := svc.GetAccount(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Name, got.Name)
	assert.Equal(t, user.HashedPassword, got.HashedPassword)
	assert.Equal(t, user.Preferences, got.Preferences)
}

func TestAccountService_CreateAccount_DuplicateKeepsExistingRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, &models.User{Email: "a@mflix.com", Name: "first"}))

	err := svc.CreateAccount(ctx, &models.User{Email: "a@mflix.com", Name: "second"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAccountExists)
	assert.Contains(t, err.Error(), "a@mflix.com")

	got, err := svc.GetAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Name)
}

func TestAccountService_StartSession_LastWriteWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.StartSession(ctx, "a@mflix.com", "token-1"))
	require.NoError(t, svc.StartSession(ctx, "a@mflix.com", "token-2"))

	session, err := svc.GetSession(ctx, "a@mflix.com")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "token-2", session.JWT)
}

func TestAccountService_StartSession_StoreErrorIsReclassified(t *testing.T) {
	cause := fmt.Errorf("%w: socket timeout", common.ErrOperationFailed)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	svc := NewAccountService(
		users.NewMemoryRepository(),
		&stubSessions{Repository: sessions.NewMemoryRepository(), upsertErr: cause},
		logger)

	err := svc.StartSession(context.Background(), "a@mflix.com", "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSessionCreate)
	assert.ErrorIs(t, err, common.ErrOperationFailed, "cause must stay attached for diagnostics")
}

func TestAccountService_EndSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.EndSession(ctx, "nobody@mflix.com"))

	require.NoError(t, svc.StartSession(ctx, "a@mflix.com", "token-1"))
	assert.True(t, svc.EndSession(ctx, "a@mflix.com"))

	session, err := svc.GetSession(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAccountService_UpdatePreferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, &models.User{
		Email:       "a@mflix.com",
		Preferences: map[string]any{"color": "green"},
	}))

	err := svc.UpdatePreferences(ctx, "a@mflix.com", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	got, err := svc.GetAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "green"}, got.Preferences,
		"rejected update must leave stored preferences unchanged")

	require.NoError(t, svc.UpdatePreferences(ctx, "a@mflix.com", map[string]any{"color": "red"}))

	got, err = svc.GetAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red"}, got.Preferences)
}

func TestAccountService_RemoveAccount_DeletesUserAndSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, &models.User{Email: "a@mflix.com"}))
	require.NoError(t, svc.StartSession(ctx, "a@mflix.com", "token-1"))

	ok, err := svc.RemoveAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := svc.GetAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	session, err := svc.GetSession(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAccountService_RemoveAccount_UserDeleteErrorSurfaces(t *testing.T) {
	cause := fmt.Errorf("%w: connection reset", common.ErrOperationFailed)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	svc := NewAccountService(
		&stubUsers{Repository: users.NewMemoryRepository(), deleteErr: cause},
		sessions.NewMemoryRepository(),
		logger)

	ok, err := svc.RemoveAccount(context.Background(), "a@mflix.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOperationFailed)
	assert.False(t, ok)
}

func TestAccountService_RemoveAccount_SessionDeleteErrorSurfaces(t *testing.T) {
	cause := errors.New("socket reset by peer")
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	usersRepo := users.NewMemoryRepository()
	svc := NewAccountService(usersRepo,
		&stubSessions{
			Repository: sessions.NewMemoryRepository(),
			deleteErr:  fmt.Errorf("%w: deleting session: %w", common.ErrOperationFailed, cause),
		},
		logger)
	ctx := context.Background()

	require.NoError(t, usersRepo.Create(ctx, &models.User{Email: "a@mflix.com"}))

	ok, err := svc.RemoveAccount(ctx, "a@mflix.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOperationFailed)
	assert.ErrorIs(t, err, cause, "underlying cause must stay attached for diagnostics")
	assert.True(t, ok, "user deletion was acknowledged before the session step failed")
}

func TestAccountService_RemoveAccount_CountMismatchLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	usersRepo := users.NewMemoryRepository()
	svc := NewAccountService(usersRepo, sessions.NewMemoryRepository(), logger)
	ctx := context.Background()

	// user exists, session already absent
	require.NoError(t, usersRepo.Create(ctx, &models.User{Email: "a@mflix.com"}))

	ok, err := svc.RemoveAccount(ctx, "a@mflix.com")
	require.NoError(t, err)
	assert.True(t, ok, "an absent session must not block account removal")
	assert.Contains(t, buf.String(), "deletion counts disagree")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestAccountService_StartSession_ConcurrentUpsertsLeaveOneSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 32
	tokens := make(map[string]struct{}, n)
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		token := fmt.Sprintf("token-%d", i)
		tokens[token] = struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.StartSession(ctx, "a@mflix.com", token)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	session, err := svc.GetSession(ctx, "a@mflix.com")
	require.NoError(t, err)
	require.NotNil(t, session)

	_, ok := tokens[session.JWT]
	assert.True(t, ok, "surviving token must be one of the submitted tokens, got %q", session.JWT)
}
