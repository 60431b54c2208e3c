package service

import (
	"context"
	"sort"

	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
)

// MutualLimit caps the mutual-following list.
const MutualLimit = 10

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the edge followerID -> targetID and returns the target's summary.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (*models.UserSummary, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FollowService", "Follow")
	summary, err := s.follow(ctx, followerID, targetID)
	span.End(err)
	return summary, err
}

func (s *FollowService) follow(ctx context.Context, followerID, targetID uint) (*models.UserSummary, error) {
	if followerID == targetID {
		return nil, models.NewConflictError("You cannot follow yourself")
	}

	target, err := s.activeUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// The unique index rejects a concurrent duplicate as Conflict.
	if err := s.followRepo.Create(ctx, &models.Follow{FollowerID: followerID, FollowingID: targetID}); err != nil {
		return nil, err
	}

	observability.SocialEvents.WithLabelValues("user_followed").Inc()
	summary := target.Summary()
	return &summary, nil
}

// Unfollow removes the edge followerID -> targetID and returns the target's summary.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) (*models.UserSummary, error) {
	removed, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundMessage("You are not following this user")
	}
	observability.SocialEvents.WithLabelValues("user_unfollowed").Inc()

	summary := models.UserSummary{ID: targetID}
	if target, err := s.userRepo.GetByID(ctx, targetID); err == nil {
		summary = target.Summary()
	}
	return &summary, nil
}

func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.UserSummary, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, targetID)
}

// Mutual returns the active users both userID and otherID follow, ordered by
// id and capped at MutualLimit.
func (s *FollowService) Mutual(ctx context.Context, userID, otherID uint) ([]models.UserSummary, error) {
	if _, err := s.activeUser(ctx, otherID); err != nil {
		return nil, err
	}

	mine, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := s.followRepo.FollowingIDs(ctx, otherID)
	if err != nil {
		return nil, err
	}

	shared := intersectIDs(mine, theirs)
	if len(shared) == 0 {
		return []models.UserSummary{}, nil
	}

	users, err := s.userRepo.ActiveSummaries(ctx, shared)
	if err != nil {
		return nil, err
	}
	if len(users) > MutualLimit {
		users = users[:MutualLimit]
	}
	return users, nil
}

func (s *FollowService) activeUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundMessage("User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return user, nil
}

func intersectIDs(a, b []uint) []uint {
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var out []uint
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
			delete(set, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
