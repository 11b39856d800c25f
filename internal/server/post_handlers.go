package server

import (
	"context"

	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)

	post, err := s.postService.Create(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostCreated, fiber.Map{"post": post})
	return c.JSON(post)
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, scopePost, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:userId
// @Summary List one author's posts
// @Tags posts
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.Post
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", scopePost)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListByUser(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{msg=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostDeleted, fiber.Map{"post_id": id})
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like post
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	likes, err := s.postService.Like(c.UserContext(), userID, id)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostLikesUpdated, fiber.Map{"post_id": id, "likes": likes})
	s.notifyPostOwner(c.UserContext(), id, userID, EventPostLiked)
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}

	likes, err := s.postService.Unlike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostLikesUpdated, fiber.Map{"post_id": id, "likes": likes})
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comment/:id
// @Summary Comment on post
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Param request body service.AddCommentInput true "Comment"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/comment/{id} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}
	var in service.AddCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)
	in.PostID = id

	comments, err := s.postService.AddComment(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostCommentsUpdated, fiber.Map{"post_id": id, "comments": comments})
	s.notifyPostOwner(c.UserContext(), id, in.UserID, EventPostCommented)
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Delete comment
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", scopePost)
	if err != nil {
		return nil
	}

	comments, err := s.postService.DeleteComment(c.UserContext(), currentUserID(c), id, c.Params("comment_id"))
	if err != nil {
		return s.respondError(c, scopePost, err)
	}

	s.publishBroadcastEvent(EventPostCommentsUpdated, fiber.Map{"post_id": id, "comments": comments})
	return c.JSON(comments)
}

// notifyPostOwner tells the author of postID that actorID interacted with it.
func (s *Server) notifyPostOwner(ctx context.Context, postID, actorID uint, eventType string) {
	post, err := s.postService.Get(ctx, postID)
	if err != nil || post.UserID == actorID {
		return
	}
	s.publishUserEvent(post.UserID, eventType, fiber.Map{"post_id": postID, "actor_id": actorID})
}
