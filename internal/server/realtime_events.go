package server

import (
	"context"
	"log/slog"

	"socialnet/internal/featureflags"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// publishUserEvent delivers evt to userID. With Redis the event goes through
// pub/sub so every instance can deliver it; without Redis it only reaches
// sockets held by this process.
func (s *Server) publishUserEvent(ctx context.Context, userID uint, evt notifications.Event) {
	if !s.featureFlags.Enabled(featureflags.RealtimeNotifications, userID) {
		return
	}

	if s.redis == nil {
		message, err := evt.Encode()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "failed to encode event", slog.String("type", evt.Type), slog.String("error", err.Error()))
			return
		}
		s.hub.Broadcast(userID, message)
		return
	}

	// Detached from the request so a client disconnect does not cancel the publish.
	if err := s.notifier.PublishEvent(context.WithoutCancel(ctx), userID, evt); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", evt.Type),
			slog.Uint64("recipient", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Server) notifyNewFollower(ctx context.Context, targetID uint, follower *models.User) {
	if follower == nil {
		return
	}
	s.publishUserEvent(ctx, targetID, notifications.NewEvent(notifications.EventNewFollower, fiber.Map{
		"follower": follower.Summary(),
	}))
}

func (s *Server) notifyNewComment(ctx context.Context, post *models.Post, comment *models.Comment) {
	s.publishUserEvent(ctx, post.UserID, notifications.NewEvent(notifications.EventNewComment, fiber.Map{
		"postId":    post.ID,
		"commentId": comment.ID,
		"author":    comment.Author,
		"content":   comment.Content,
	}))
}

func (s *Server) notifyPostLiked(ctx context.Context, post *models.Post, liker *models.User) {
	payload := fiber.Map{
		"postId": post.ID,
		"likes":  post.Likes,
	}
	if liker != nil {
		payload["likedBy"] = liker.Summary()
	}
	s.publishUserEvent(ctx, post.UserID, notifications.NewEvent(notifications.EventPostLiked, payload))
}
