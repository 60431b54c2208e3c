// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"socialnet/internal/auth"
	"socialnet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]`)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// one hash shared by every seeded account
	passwordHash string
	// appended to usernames so reruns do not collide
	serial int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	opts = opts.withDefaults()

	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := auth.NewPasswordHasher(cost).Hash(DefaultPassword)
	if err != nil {
		return nil, err
	}

	return &Factory{
		db:           db,
		opts:         opts,
		faker:        gofakeit.New(seed),
		passwordHash: hash,
	}, nil
}

// BuildUser constructs a user that passes registration validation without
// persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.serial++
	first := f.faker.FirstName()
	last := f.faker.LastName()

	base := usernameUnsafe.ReplaceAllString(strings.ToLower(first+"_"+last), "")
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	username := fmt.Sprintf("%s_%d", base, f.serial)

	user := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       f.passwordHash,
		FirstName:      first,
		LastName:       last,
		Bio:            f.faker.Sentence(10),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		IsActive:       true,
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for user with a created_at spread over the
// last MaxDays days.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		Content:   f.faker.Paragraph(1, 3, 8, " "),
		IsActive:  true,
		CreatedAt: f.pastTime(),
	}
	if len(post.Content) > 1000 {
		post.Content = post.Content[:1000]
	}

	if f.faker.Float64() < f.opts.ImageRatio {
		url := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
		post.ImageURL = &url
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches of BatchSize.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).Omit("Author", "Comments").CreateInBatches(posts, f.opts.BatchSize).Error
}

// CreateComment constructs and persists a sample comment on post authored by user.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	createdAt := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
	if createdAt.After(time.Now()) {
		createdAt = time.Now()
	}
	comment := &models.Comment{
		UserID:    user.ID,
		PostID:    post.ID,
		Content:   f.faker.Sentence(8),
		IsActive:  true,
		CreatedAt: createdAt,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists the edge follower -> following. Existing edges are
// left untouched.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.User) error {
	if follower.ID == following.ID {
		return fmt.Errorf("user %d cannot follow itself", follower.ID)
	}
	follow := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	return f.db.WithContext(ctx).
		Omit("Follower", "Following").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow).Error
}

// AddLikes bumps the like counter of post by n.
func (f *Factory) AddLikes(ctx context.Context, post *models.Post, n int) error {
	if n <= 0 {
		return nil
	}
	err := f.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("likes", gorm.Expr("likes + ?", n)).Error
	if err != nil {
		return err
	}
	post.Likes += n
	return nil
}

func (f *Factory) pastTime() time.Time {
	days := f.faker.Number(0, f.opts.MaxDays-1)
	hours := f.faker.Number(0, 23)
	mins := f.faker.Number(0, 59)
	return time.Now().Add(-time.Duration(days)*24*time.Hour - time.Duration(hours)*time.Hour - time.Duration(mins)*time.Minute)
}

// pick returns n distinct indexes in [0, size) excluding skip.
func (f *Factory) pick(size, n, skip int) []int {
	candidates := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if i != skip {
			candidates = append(candidates, i)
		}
	}
	f.faker.ShuffleAnySlice(candidates)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
