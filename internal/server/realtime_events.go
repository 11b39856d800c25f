package server

import (
	"context"
	"encoding/json"

	"devconnector/internal/middleware"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated         = "post_created"
	EventPostDeleted         = "post_deleted"
	EventPostLikesUpdated    = "post_likes_updated"
	EventPostCommentsUpdated = "post_comments_updated"
	EventUserRemoved         = "user_removed"
	EventPostLiked           = "post_liked"
	EventPostCommented       = "post_commented"
)

type feedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func encodeEvent(eventType string, payload any) (string, bool) {
	data, err := json.Marshal(feedEvent{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.Error("failed to marshal event", "type", eventType, "error", err)
		return "", false
	}
	return string(data), true
}

// publishUserEvent delivers an event to one user's connections. With Redis the
// event goes through pub/sub so every instance sees it; the wired hub then
// delivers locally. Without Redis it is delivered to this instance only.
func (s *Server) publishUserEvent(userID uint, eventType string, payload any) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			middleware.Logger.Warn("failed to publish user event", "type", eventType, "user_id", userID, "error", err)
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
}

// publishBroadcastEvent delivers an event to every connected client.
func (s *Server) publishBroadcastEvent(eventType string, payload any) {
	message, ok := encodeEvent(eventType, payload)
	if !ok {
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			middleware.Logger.Warn("failed to publish broadcast event", "type", eventType, "error", err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}
