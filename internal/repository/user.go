package repository

import (
	"context"
	"errors"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	List(ctx context.Context, limit, offset int) ([]models.UserCard, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.UserCard, error)
	ActiveSummaries(ctx context.Context, ids []uint) ([]models.UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns the user regardless of IsActive; callers decide what an
// inactive account means. Results are cached in Redis.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns (nil, nil) when no row matches.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByLogin matches login against the email (case-insensitive) or the
// username (exact). Returns (nil, nil) when nothing matches.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", strings.ToLower(strings.TrimSpace(login)), login).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Taken reports whether username or email already belong to any account,
// active or not.
func (r *userRepository) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&rows).Error
	if err != nil {
		return false, false, models.NewInternalError(err)
	}

	var usernameTaken, emailTaken bool
	for _, u := range rows {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	// Cached feed pages embed the author summary and hide inactive authors.
	cache.InvalidateGlobalFeed(ctx)
	return nil
}

// List returns active users, newest first.
func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.UserCard, error) {
	users := []models.UserCard{}
	err := readDB(r.db).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit, 20)).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Search matches query as a case-insensitive substring of username, first
// name or last name. LIKE wildcards in query are matched literally.
func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserCard, error) {
	users := []models.UserCard{}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := readDB(r.db).WithContext(ctx).
		Where("is_active = ?", true).
		Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern).
		Order("username ASC").
		Limit(clampLimit(limit, 20)).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ActiveSummaries resolves ids to active users, ordered by id.
func (r *userRepository) ActiveSummaries(ctx context.Context, ids []uint) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	if len(ids) == 0 {
		return users, nil
	}
	err := readDB(r.db).WithContext(ctx).
		Select(summaryColumns).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
