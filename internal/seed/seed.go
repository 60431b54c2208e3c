package seed

import (
	"context"
	"fmt"
	"log/slog"

	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Follows  int
	Likes    int
}

// Seeder populates the database according to Options.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, factory: factory}, nil
}

// Run seeds users, then their posts, comments on those posts, follow edges
// and like counters.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log := middleware.Logger
	summary := &Summary{}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Info("seeded users", slog.Int("count", summary.Users))

	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, user := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			posts = append(posts, s.factory.BuildPost(user))
		}
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return summary, fmt.Errorf("create posts: %w", err)
	}
	summary.Posts = len(posts)
	log.Info("seeded posts", slog.Int("count", summary.Posts))

	for _, post := range posts {
		for i := 0; i < s.opts.CommentsPerPost; i++ {
			author := users[s.factory.faker.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(ctx, author, post); err != nil {
				return summary, fmt.Errorf("create comment: %w", err)
			}
			summary.Comments++
		}
	}
	log.Info("seeded comments", slog.Int("count", summary.Comments))

	for i, follower := range users {
		for _, j := range s.factory.pick(len(users), s.opts.FollowsPerUser, i) {
			if err := s.factory.CreateFollow(ctx, follower, users[j]); err != nil {
				return summary, fmt.Errorf("create follow: %w", err)
			}
			summary.Follows++
		}
	}
	log.Info("seeded follows", slog.Int("count", summary.Follows))

	if s.opts.MaxLikes > 0 {
		for _, post := range posts {
			n := s.factory.faker.Number(0, s.opts.MaxLikes)
			if err := s.factory.AddLikes(ctx, post, n); err != nil {
				return summary, fmt.Errorf("add likes: %w", err)
			}
			summary.Likes += n
		}
	}
	log.Info("seeded likes", slog.Int("count", summary.Likes))

	return summary, nil
}

// ClearAll removes every follow, comment, post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec("TRUNCATE TABLE follows, comments, posts, users RESTART IDENTITY CASCADE").Error
	}
	for _, table := range []string{"follows", "comments", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
