package service

import (
	"context"
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn         func(context.Context, *models.Follow) error
	deleteFn         func(context.Context, uint, uint) (bool, error)
	existsFn         func(context.Context, uint, uint) (bool, error)
	followingIDsFn   func(context.Context, uint) ([]uint, error)
	listFollowersFn  func(context.Context, uint, int, int) ([]models.UserSummary, error)
	listFollowingFn  func(context.Context, uint, int, int) ([]models.UserSummary, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(_ context.Context, _ *models.Follow) error { return nil },
		deleteFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn:         func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingIDsFn:   func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		listFollowersFn:  func(_ context.Context, _ uint, _, _ int) ([]models.UserSummary, error) { return nil, nil },
		listFollowingFn:  func(_ context.Context, _ uint, _, _ int) ([]models.UserSummary, error) { return nil, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()

	t.Run("self follow is a conflict", func(t *testing.T) {
		t.Parallel()
		repo := noopFollowRepo()
		repo.createFn = func(_ context.Context, _ *models.Follow) error {
			t.Fatal("Create must not be called")
			return nil
		}
		_, err := NewFollowService(repo, noopUserRepo()).Follow(context.Background(), 4, 4)
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("inactive target", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: false}, nil
		}
		_, err := NewFollowService(noopFollowRepo(), users).Follow(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		_, err := NewFollowService(noopFollowRepo(), users).Follow(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("duplicate surfaces repository conflict", func(t *testing.T) {
		t.Parallel()
		repo := noopFollowRepo()
		repo.createFn = func(_ context.Context, _ *models.Follow) error {
			return models.NewConflictError("Already following this user")
		}
		_, err := NewFollowService(repo, noopUserRepo()).Follow(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("success returns target summary", func(t *testing.T) {
		t.Parallel()
		repo := noopFollowRepo()
		var edge *models.Follow
		repo.createFn = func(_ context.Context, f *models.Follow) error {
			edge = f
			return nil
		}
		summary, err := NewFollowService(repo, noopUserRepo()).Follow(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, uint(2), summary.ID)
		require.NotNil(t, edge)
		assert.Equal(t, uint(1), edge.FollowerID)
		assert.Equal(t, uint(2), edge.FollowingID)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	repo := noopFollowRepo()
	repo.deleteFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
	_, err := NewFollowService(repo, noopUserRepo()).Unfollow(context.Background(), 1, 2)
	assertAppErrorCode(t, err, models.CodeNotFound)
	assert.EqualError(t, err, "You are not following this user")

	summary, err := NewFollowService(noopFollowRepo(), noopUserRepo()).Unfollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), summary.ID)
}

func TestFollowService_Mutual(t *testing.T) {
	t.Parallel()

	t.Run("intersection resolved through active summaries", func(t *testing.T) {
		t.Parallel()
		repo := noopFollowRepo()
		repo.followingIDsFn = func(_ context.Context, userID uint) ([]uint, error) {
			if userID == 1 {
				return []uint{5, 3, 9, 2}, nil
			}
			return []uint{9, 4, 3}, nil
		}
		users := noopUserRepo()
		var asked []uint
		users.activeSummariesFn = func(_ context.Context, ids []uint) ([]models.UserSummary, error) {
			asked = ids
			out := make([]models.UserSummary, 0, len(ids))
			for _, id := range ids {
				out = append(out, models.UserSummary{ID: id})
			}
			return out, nil
		}

		mutual, err := NewFollowService(repo, users).Mutual(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint{3, 9}, asked)
		assert.Len(t, mutual, 2)
	})

	t.Run("capped", func(t *testing.T) {
		t.Parallel()
		ids := make([]uint, 0, 20)
		for i := uint(10); i < 30; i++ {
			ids = append(ids, i)
		}
		repo := noopFollowRepo()
		repo.followingIDsFn = func(_ context.Context, _ uint) ([]uint, error) { return ids, nil }
		users := noopUserRepo()
		users.activeSummariesFn = func(_ context.Context, in []uint) ([]models.UserSummary, error) {
			out := make([]models.UserSummary, 0, len(in))
			for _, id := range in {
				out = append(out, models.UserSummary{ID: id})
			}
			return out, nil
		}

		mutual, err := NewFollowService(repo, users).Mutual(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Len(t, mutual, MutualLimit)
		assert.Equal(t, uint(10), mutual[0].ID)
	})

	t.Run("nothing shared", func(t *testing.T) {
		t.Parallel()
		mutual, err := NewFollowService(noopFollowRepo(), noopUserRepo()).Mutual(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.NotNil(t, mutual)
		assert.Empty(t, mutual)
	})
}

func TestIntersectIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []uint{1, 4}, intersectIDs([]uint{4, 1, 7}, []uint{1, 4, 4, 8}))
	assert.Empty(t, intersectIDs(nil, []uint{1}))
}
