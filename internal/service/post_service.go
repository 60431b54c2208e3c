package service

import (
	"context"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
	"socialnet/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL *string
}

// UpdatePostInput edits a post. Empty Content keeps the stored text; a nil
// ImageURL keeps the stored image and an empty one clears it.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ImageURL *string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	post, err := s.createPost(ctx, in)
	span.End(err)
	return post, err
}

func (s *PostService) createPost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content, err := validation.PostContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	imageURL, err := normalizeImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  content,
		ImageURL: imageURL,
		IsActive: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	summary := author.Summary()
	post.Author = &summary
	post.Comments = []models.Comment{}

	cache.InvalidateGlobalFeed(ctx)
	observability.SocialEvents.WithLabelValues("post_created").Inc()
	return post, nil
}

// GetPost returns an active post with every active comment, oldest first.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetWithComments(ctx, id)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetOwned(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return nil, models.NewNotFoundMessage("Post not found or unauthorized")
	}

	fields := map[string]interface{}{}
	if strings.TrimSpace(in.Content) != "" {
		content, err := validation.PostContent(in.Content)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["content"] = content
	}
	if in.ImageURL != nil {
		imageURL, err := normalizeImageURL(in.ImageURL)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = imageURL
	}

	if len(fields) > 0 {
		if err := s.postRepo.UpdateFields(ctx, post.ID, fields); err != nil {
			return nil, err
		}
		cache.InvalidateGlobalFeed(ctx)
	}
	return s.postRepo.GetActiveByID(ctx, post.ID)
}

// DeletePost soft-deletes an owned post. Deleting an already deleted post succeeds.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetOwned(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}
	if !post.IsActive {
		return nil
	}
	if err := s.postRepo.SoftDelete(ctx, post.ID); err != nil {
		return err
	}

	cache.InvalidateGlobalFeed(ctx)
	observability.SocialEvents.WithLabelValues("post_deleted").Inc()
	return nil
}

// LikePost increments the like counter and returns the post with its new count.
func (s *PostService) LikePost(ctx context.Context, postID uint) (*models.Post, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "LikePost")
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	likes, err := s.postRepo.IncrementLikes(ctx, postID)
	if err != nil {
		span.End(err)
		return nil, err
	}
	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		span.End(err)
		return nil, err
	}
	post.Likes = likes

	cache.InvalidateGlobalFeed(ctx)
	observability.SocialEvents.WithLabelValues("post_liked").Inc()
	span.End(nil)
	return post, nil
}

func normalizeImageURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if err := validation.ValidateURL("imageUrl", trimmed); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return &trimmed, nil
}
