package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (s *Store) GetPosts(ctx context.Context) error {
	var posts []Post
	if err := s.api.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(GetPosts{Posts: posts})
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uint) error {
	var p Post
	if err := s.api.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &p); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(GetPost{Post: p})
	return nil
}

func (s *Store) AddLike(ctx context.Context, id uint) error {
	return s.updateLikes(ctx, fmt.Sprintf("/posts/like/%d", id), id)
}

func (s *Store) RemoveLike(ctx context.Context, id uint) error {
	return s.updateLikes(ctx, fmt.Sprintf("/posts/unlike/%d", id), id)
}

func (s *Store) updateLikes(ctx context.Context, path string, id uint) error {
	var likes []Like
	if err := s.api.do(ctx, http.MethodPut, path, nil, &likes); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(UpdateLikes{ID: id, Likes: likes})
	return nil
}

func (s *Store) AddPost(ctx context.Context, text string) error {
	var p Post
	if err := s.api.do(ctx, http.MethodPost, "/posts", textBody{Text: text}, &p); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(AddPost{Post: p})
	s.SetAlert("Post Created", AlertSuccess)
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	if err := s.api.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, &msgReply{}); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(DeletePost{ID: id})
	s.SetAlert("Post Removed", AlertSuccess)
	return nil
}

func (s *Store) AddComment(ctx context.Context, postID uint, text string) error {
	var comments []Comment
	if err := s.api.do(ctx, http.MethodPost, fmt.Sprintf("/posts/comment/%d", postID), textBody{Text: text}, &comments); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(AddComment{Comments: comments})
	s.SetAlert("Comment Added", AlertSuccess)
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, postID uint, commentID string) error {
	path := fmt.Sprintf("/posts/comment/%d/%s", postID, url.PathEscape(commentID))
	if err := s.api.do(ctx, http.MethodDelete, path, nil, &[]Comment{}); err != nil {
		s.postFailed(err)
		return err
	}
	s.Dispatch(RemoveComment{CommentID: commentID})
	s.SetAlert("Comment Removed", AlertSuccess)
	return nil
}

func (s *Store) postFailed(err error) {
	s.alertErrors(err)
	s.Dispatch(PostError{Err: errorState(err)})
}
