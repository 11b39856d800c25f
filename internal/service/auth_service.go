// Package service holds the business rules behind each API operation.
package service

import (
	"context"
	"strings"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"
)

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account and returns a fresh token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", models.NewValidationError("User already exists")
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Avatar:   auth.GravatarURL(in.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	observability.AuthEvents.WithLabelValues("register").Inc()

	return s.issue(user.ID)
}

// Login exchanges credentials for a token. Unknown emails and wrong passwords
// fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPassword(user.Password, in.Password) {
		observability.AuthEvents.WithLabelValues("login_failed").Inc()
		return "", models.NewValidationError("Invalid Credentials")
	}
	observability.AuthEvents.WithLabelValues("login").Inc()

	return s.issue(user.ID)
}

// CurrentUser returns the caller's account without its password hash.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) issue(userID uint) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}
