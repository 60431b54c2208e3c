package repository

import (
	"context"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uint) (bool, error)
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. A duplicate pair is reported as Conflict by the
// unique index, so concurrent follows cannot both succeed.
func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Omit("Follower", "Following").Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the edge and reports whether one existed.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowingIDs returns every user id userID follows.
func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("following_id ASC").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// ListFollowers returns active users following userID, newest edge first.
func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	return r.listEdges(ctx, "follows.follower_id", "follows.following_id", userID, limit, offset)
}

// ListFollowing returns active users userID follows, newest edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	return r.listEdges(ctx, "follows.following_id", "follows.follower_id", userID, limit, offset)
}

func (r *followRepository) listEdges(ctx context.Context, joinCol, filterCol string, userID uint, limit, offset int) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.UserSummary{}).
		Select("users.id, users.username, users.first_name, users.last_name, users.profile_picture").
		Joins("JOIN follows ON users.id = "+joinCol).
		Where(filterCol+" = ? AND users.is_active = ?", userID, true).
		Order("follows.created_at DESC").Order("follows.id DESC").
		Limit(clampLimit(limit, 50)).
		Offset(offset).
		Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.countEdges(ctx, "follows.follower_id", "follows.following_id", userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.countEdges(ctx, "follows.following_id", "follows.follower_id", userID)
}

func (r *followRepository) countEdges(ctx context.Context, joinCol, filterCol string, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Joins("JOIN users ON users.id = "+joinCol).
		Where(filterCol+" = ? AND users.is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
