package service

import (
	"context"

	"socialnet/internal/cache"
	"socialnet/internal/featureflags"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
)

// DefaultFeedLimit is the page size when the caller does not ask for one.
const DefaultFeedLimit = 20

type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	flags      *featureflags.Manager
}

func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository, flags *featureflags.Manager) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		followRepo: followRepo,
		flags:      flags,
	}
}

// GlobalFeed lists every active post newest first. The first page is served
// from Redis when the global_feed_cache flag is on.
func (s *FeedService) GlobalFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	limit = pageLimit(limit)
	if offset > 0 || !s.flags.EnabledGlobally(featureflags.GlobalFeedCache) {
		return s.postRepo.ListActive(ctx, limit, offset)
	}

	key := cache.GlobalFeedKey(limit)
	var posts []models.Post
	found, err := cache.GetJSON(ctx, key, &posts)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "global feed cache read failed", "key", key, "error", err)
	}
	if found {
		observability.FeedCacheResults.WithLabelValues("hit").Inc()
		return posts, nil
	}
	observability.FeedCacheResults.WithLabelValues("miss").Inc()

	posts, err = s.postRepo.ListActive(ctx, limit, 0)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, posts, cache.GlobalFeedTTL); err != nil {
		middleware.Logger.WarnContext(ctx, "global feed cache write failed", "key", key, "error", err)
	}
	return posts, nil
}

// PersonalFeed lists active posts by userID and everyone userID follows.
func (s *FeedService) PersonalFeed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "PersonalFeed")
	posts, err := s.personalFeed(ctx, userID, limit, offset)
	span.End(err)
	return posts, err
}

func (s *FeedService) personalFeed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	following, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors := append([]uint{userID}, following...)
	return s.postRepo.ListByAuthors(ctx, authors, pageLimit(limit), offset)
}

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFeedLimit
	case limit > 100:
		return 100
	default:
		return limit
	}
}
