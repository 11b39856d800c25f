// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/cache"
	"devconnector/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db    *gorm.DB
	after afterCommit
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, after: runNow}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByID is served from the cache when possible. The cached copy never
// carries the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user := new(models.User)
	err := cache.Aside(ctx, cache.UserKey(id), user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Take(user, id).Error; err != nil {
			return lookupError(err, "User not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail returns nil, nil when no user has that address. Login needs the
// hash, so this read bypasses the cache.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// Create stores user with its email lower-cased. A taken email is a
// validation error.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	switch {
	case isDuplicate(err):
		return models.NewValidationError("User already exists")
	case err != nil:
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.after(func() { cache.InvalidateUser(ctx, id) })
	return nil
}
