package repository

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/models"

	"gorm.io/gorm"
)

// afterCommit schedules fn to run once the current write is durable.
type afterCommit func(fn func())

func runNow(fn func()) { fn() }

// Store bundles the repositories that share one connection, so a transaction
// can rebind all of them at once.
type Store struct {
	db       *gorm.DB
	after    afterCommit
	Users    UserRepository
	Profiles ProfileRepository
	Posts    PostRepository
}

// NewStore returns repositories bound to db.
func NewStore(db *gorm.DB) *Store {
	return newStore(db, runNow)
}

func newStore(db *gorm.DB, after afterCommit) *Store {
	return &Store{
		db:       db,
		after:    after,
		Users:    &userRepository{db: db, after: after},
		Profiles: NewProfileRepository(db),
		Posts:    &postRepository{db: db, after: after},
	}
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// Cache invalidations queued inside fn run only after the commit, or are
// handed to the enclosing transaction when nested.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var pending []func()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending = nil
		return fn(newStore(tx, func(f func()) { pending = append(pending, f) }))
	})
	if err != nil {
		return err
	}
	for _, f := range pending {
		s.after(f)
	}
	return nil
}

// lookupError maps a failed single-row read to NotFound(missing) or an
// internal error.
func lookupError(err error, missing string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundMessage(missing)
	}
	return models.NewInternalError(err)
}

// isDuplicate reports a unique index violation on postgres (SQLSTATE 23505)
// or sqlite.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23505") || strings.Contains(msg, "unique constraint")
}
