package repository

import (
	"context"

	"devconnector/internal/cache"
	"devconnector/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type postRepository struct {
	db    *gorm.DB
	after afterCommit
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, after: runNow}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.EnsureCollections()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
			return lookupError(err, "Post not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.EnsureCollections()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *postRepository) find(q *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		posts[i].EnsureCollections()
	}
	return posts, nil
}

// Save overwrites every column of an existing post, likes and comments
// included. Concurrent writers to the same post are last-write-wins, but a
// post deleted in the meantime stays deleted.
func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	post.EnsureCollections()
	res := r.db.WithContext(ctx).Model(post).Select("*").Updates(post)
	switch {
	case res.Error != nil:
		return models.NewInternalError(res.Error)
	case res.RowsAffected == 0:
		return models.NewNotFoundMessage("Post not found")
	}
	r.after(func() { cache.InvalidatePost(ctx, post.ID) })
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.after(func() { cache.InvalidatePost(ctx, id) })
	return nil
}

func (r *postRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.after(func() {
		for _, id := range ids {
			cache.InvalidatePost(ctx, id)
		}
	})
	return nil
}
