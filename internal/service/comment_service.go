package service

import (
	"context"

	"socialnet/internal/cache"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
	"socialnet/internal/validation"
)

var errCommentNotOwned = models.NewNotFoundMessage("Comment not found or unauthorized")

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a comment to an active post. The post is returned so the
// caller can notify its author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, *models.Post, error) {
	content, err := validation.CommentContent(in.Content)
	if err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetActiveByID(ctx, in.PostID)
	if err != nil {
		return nil, nil, err
	}

	comment := &models.Comment{
		UserID:   in.UserID,
		PostID:   post.ID,
		Content:  content,
		IsActive: true,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, nil, err
	}

	cache.InvalidateGlobalFeed(ctx)
	observability.SocialEvents.WithLabelValues("comment_created").Inc()
	return comment, post, nil
}

// DeleteComment soft-deletes a comment the caller wrote on the given post.
// Deleting an already deleted comment succeeds.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return errCommentNotOwned
		}
		return err
	}
	if comment.PostID != in.PostID || comment.UserID != in.UserID {
		return errCommentNotOwned
	}
	if !comment.IsActive {
		return nil
	}
	if err := s.commentRepo.SoftDelete(ctx, comment.ID); err != nil {
		return err
	}

	cache.InvalidateGlobalFeed(ctx)
	observability.SocialEvents.WithLabelValues("comment_deleted").Inc()
	return nil
}
