package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID uint) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d", userID), nil
}

type fakeRepoLookup struct {
	repos json.RawMessage
	err   error
	calls []string
}

func (f *fakeRepoLookup) Repos(_ context.Context, username string) (json.RawMessage, error) {
	f.calls = append(f.calls, username)
	return f.repos, f.err
}

type services struct {
	store    *repository.Store
	auth     *AuthService
	profiles *ProfileService
	posts    *PostService
	github   *fakeRepoLookup
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := repository.NewStore(db)
	gh := &fakeRepoLookup{repos: json.RawMessage(`[{"name":"alpha"}]`)}
	return &services{
		store:    store,
		auth:     NewAuthService(store.Users, fakeIssuer{}),
		profiles: NewProfileService(store, gh),
		posts:    NewPostService(store.Posts, store.Users),
		github:   gh,
	}
}

func (s *services) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	_, err := s.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	user, err := s.store.Users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func assertAppError(t *testing.T, err error, code, msg string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

func assertValidationFields(t *testing.T, err error, params ...string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, models.CodeValidation, appErr.Code)
	got := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		got = append(got, f.Param)
	}
	assert.Equal(t, params, got)
}
