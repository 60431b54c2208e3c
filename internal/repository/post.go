package repository

import (
	"context"
	"errors"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// PreviewComments is how many of the newest active comments each feed post carries.
const PreviewComments = 5

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetActiveByID(ctx context.Context, id uint) (*models.Post, error)
	GetWithComments(ctx context.Context, id uint) (*models.Post, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Post, error)
	ListActive(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Post, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) (int, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

var errPostNotOwned = models.NewNotFoundMessage("Post not found or unauthorized")

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Comments").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetActiveByID returns an active post with its author.
func (r *postRepository) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("Author", selectSummary).
		Where("is_active = ?", true).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetWithComments returns an active post with every active comment, oldest first.
func (r *postRepository) GetWithComments(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("Author", selectSummary).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at ASC").Order("id ASC")
		}).
		Preload("Comments.Author", selectSummary).
		Where("is_active = ?", true).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return &post, nil
}

// GetOwned returns post id if userID wrote it, active or not. Missing and
// foreign posts produce the same NotFound.
func (r *postRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotOwned
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListActive returns the global timeline.
func (r *postRepository) ListActive(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.listFeed(ctx, nil, limit, offset)
}

// ListByAuthors returns active posts written by any of authorIDs.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.listFeed(ctx, authorIDs, limit, offset)
}

func (r *postRepository) listFeed(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	posts := []models.Post{}
	q := readDB(r.db).WithContext(ctx).
		Preload("Author", selectSummary).
		Where("is_active = ?", true)
	if authorIDs != nil {
		q = q.Where("user_id IN ?", authorIDs)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit, 20)).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachRecentComments(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachRecentComments loads up to PreviewComments newest active comments per
// post in a single query.
func (r *postRepository) attachRecentComments(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		posts[i].Comments = []models.Comment{}
	}

	db := readDB(r.db).WithContext(ctx)
	ranked := db.Model(&models.Comment{}).
		Select("comments.*, ROW_NUMBER() OVER (PARTITION BY post_id ORDER BY created_at DESC, id DESC) AS rn").
		Where("post_id IN ? AND is_active = ?", ids, true)

	var comments []models.Comment
	err := db.Table("(?) AS comments", ranked).
		Preload("Author", selectSummary).
		Where("rn <= ?", PreviewComments).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	byPost := make(map[uint][]models.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		if cs, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = cs
		}
	}
	return nil
}

// ListByUser returns the newest active posts of userID without comments.
func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	err := readDB(r.db).WithContext(ctx).
		Preload("Author", selectSummary).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit, 10)).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IncrementLikes bumps the counter of an active post in one statement and
// returns the new value.
func (r *postRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND is_active = ?", id, true).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundMessage("Post not found")
		}
		if err := tx.Model(&models.Post{}).Select("likes").Where("id = ?", id).Scan(&likes).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}
