package service

import (
	"context"
	"strings"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
	newID func() string
	now   func() time.Time
}

type CreatePostInput struct {
	UserID uint   `json:"-"`
	Text   string `json:"text" validate:"required" msg:"Text is required"`
}

type AddCommentInput struct {
	UserID uint   `json:"-"`
	PostID uint   `json:"-"`
	Text   string `json:"text" validate:"required" msg:"Text is required"`
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{
		posts: posts,
		users: users,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Create stores a post. The author's name and avatar are copied at creation
// and never refreshed.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: in.UserID,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("created").Inc()
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

// ListByUser returns one author's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// Delete removes a post owned by userID.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("User not authorized")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	observability.PostEvents.WithLabelValues("deleted").Inc()
	return nil
}

// Like adds userID's like to the front of the post's likes.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (likes []models.Like, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Like", attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, models.NewConflictError("Post already liked")
	}

	post.Likes = append([]models.Like{{ID: s.newID(), UserID: userID}}, post.Likes...)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("liked").Inc()
	return post.Likes, nil
}

// Unlike removes userID's like from the post.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (likes []models.Like, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Unlike", attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(userID) {
		return nil, models.NewConflictError("Post has not yet been liked")
	}

	kept := make([]models.Like, 0, len(post.Likes))
	for _, l := range post.Likes {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	post.Likes = kept
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("unliked").Inc()
	return post.Likes, nil
}

// AddComment puts a comment at the front of the post's comments.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        s.newID(),
		UserID:    in.UserID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now().UTC(),
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("commented").Inc()
	return post.Comments, nil
}

// DeleteComment removes a comment written by userID.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID uint, commentID string) ([]models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range post.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.NewNotFoundMessage("Comment does not exist")
	}
	if post.Comments[idx].UserID != userID {
		return nil, models.NewForbiddenError("User not authorized")
	}

	post.Comments = append(post.Comments[:idx:idx], post.Comments[idx+1:]...)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("uncommented").Inc()
	return post.Comments, nil
}
