package repository

import (
	"context"

	"devconnector/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
// Every read populates the owner's public fields.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Save(ctx context.Context, profile *models.Profile) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// upsertColumns are rewritten when a profile for the same user already exists.
// Experience and education are edited through Save only.
var upsertColumns = []string{
	"company", "website", "location", "status", "skills", "bio",
	"github_username", "social", "updated_at",
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "avatar")
	})
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := withOwner(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, lookupError(err, "Profile not found")
	}
	profile.EnsureCollections()
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := withOwner(r.db.WithContext(ctx)).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range profiles {
		profiles[i].EnsureCollections()
	}
	return profiles, nil
}

// Upsert inserts profile or overwrites the existing row for profile.UserID.
// The unique index on user_id keeps one profile per user even under races.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	profile.EnsureCollections()
	// The row is matched on user_id, never on a stale primary key.
	profile.ID = 0
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(profile).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Save overwrites every column of an existing profile. It never inserts, so
// an edit racing an account delete cannot leave an orphan profile behind.
func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) error {
	profile.EnsureCollections()
	res := r.db.WithContext(ctx).Model(profile).Select("*").Omit(clause.Associations).Updates(profile)
	switch {
	case res.Error != nil:
		return models.NewInternalError(res.Error)
	case res.RowsAffected == 0:
		return models.NewNotFoundMessage("Profile not found")
	}
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
