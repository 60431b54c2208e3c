package repository

import (
	"context"
	"errors"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts comment and loads its author summary.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Author").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	var author models.UserSummary
	if err := db.Select(summaryColumns).First(&author, comment.UserID).Error; err != nil {
		return models.NewInternalError(err)
	}
	comment.Author = &author
	return nil
}

// GetByID returns the comment regardless of IsActive.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Comment not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
