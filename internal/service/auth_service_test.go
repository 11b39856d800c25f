package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devconnector/internal/auth"
	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	token, err := s.auth.Register(ctx, RegisterInput{Name: " Ada ", Email: "Ada@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	user, err := s.store.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.Name)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "secret123"))
	assert.Equal(t, auth.GravatarURL("ada@example.com"), user.Avatar)
}

func TestAuthService_RegisterTwiceFails(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	in := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"}
	_, err := s.auth.Register(ctx, in)
	require.NoError(t, err)

	_, err = s.auth.Register(ctx, in)
	assertAppError(t, err, models.CodeValidation, "User already exists")
}

func TestAuthService_RegisterValidation(t *testing.T) {
	s := newServices(t)

	tests := []struct {
		name   string
		in     RegisterInput
		params []string
	}{
		{"Everything missing", RegisterInput{}, []string{"name", "email", "password"}},
		{"Bad email", RegisterInput{Name: "Ada", Email: "ada", Password: "secret123"}, []string{"email"}},
		{"Short password", RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "12345"}, []string{"password"}},
		{"Blank name", RegisterInput{Name: "   ", Email: "ada@example.com", Password: "secret123"}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.auth.Register(context.Background(), tt.in)
			assertValidationFields(t, err, tt.params...)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.register(t, "Ada", "ada@example.com")

	token, err := s.auth.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "token-"))

	_, err = s.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	assertAppError(t, err, models.CodeValidation, "Invalid Credentials")

	_, err = s.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assertAppError(t, err, models.CodeValidation, "Invalid Credentials")

	_, err = s.auth.Login(ctx, LoginInput{Email: "ada@example.com"})
	assertValidationFields(t, err, "password")
}

func TestAuthService_IssueFailureIsInternal(t *testing.T) {
	s := newServices(t)
	svc := NewAuthService(s.store.Users, fakeIssuer{err: errors.New("no secret")})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	assertAppError(t, err, models.CodeInternal, "Server Error")
}

func TestAuthService_CurrentUser(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := s.register(t, "Ada", "ada@example.com")

	user, err := s.auth.CurrentUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Empty(t, user.Password)

	_, err = s.auth.CurrentUser(ctx, 999)
	assertAppError(t, err, models.CodeNotFound, "User not found")
}
