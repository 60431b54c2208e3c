package seed

import (
	"context"
	"testing"

	"socialnet/internal/auth"
	"socialnet/internal/database"
	"socialnet/internal/models"
	"socialnet/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func testOptions() Options {
	return Options{
		Users:           6,
		PostsPerUser:    2,
		CommentsPerPost: 1,
		FollowsPerUser:  3,
		MaxLikes:        5,
		MaxDays:         10,
		ImageRatio:      0.5,
		RandomSeed:      42,
		FastHash:        true,
	}
}

func TestSeeder_Run(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	seeder, err := NewSeeder(db, testOptions())
	require.NoError(t, err)

	summary, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Users)
	assert.Equal(t, 12, summary.Posts)
	assert.Equal(t, 12, summary.Comments)
	assert.Equal(t, 18, summary.Follows)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 6)
	hasher := auth.NewPasswordHasher(4)
	for _, u := range users {
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
		assert.NoError(t, validation.ValidateEmail(u.Email), u.Email)
		assert.True(t, u.IsActive)
		assert.True(t, hasher.Compare(u.Password, DefaultPassword))
	}

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var follows int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	assert.Equal(t, int64(18), follows)

	var likes int64
	require.NoError(t, db.Model(&models.Post{}).Select("COALESCE(SUM(likes), 0)").Scan(&likes).Error)
	assert.Equal(t, int64(summary.Likes), likes)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		_, err := validation.PostContent(p.Content)
		assert.NoError(t, err)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	seeder, err := NewSeeder(db, testOptions())
	require.NoError(t, err)
	_, err = seeder.Run(ctx)
	require.NoError(t, err)

	require.NoError(t, seeder.ClearAll(ctx))
	for _, model := range database.PersistentModels() {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestFactory_CreateFollowIgnoresDuplicates(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	f, err := NewFactory(db, Options{FastHash: true, RandomSeed: 1})
	require.NoError(t, err)
	a, err := f.CreateUser(ctx)
	require.NoError(t, err)
	b, err := f.CreateUser(ctx)
	require.NoError(t, err)

	require.NoError(t, f.CreateFollow(ctx, a, b))
	require.NoError(t, f.CreateFollow(ctx, a, b))
	assert.Error(t, f.CreateFollow(ctx, a, a))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFactory_Pick(t *testing.T) {
	f, err := NewFactory(nil, Options{FastHash: true, RandomSeed: 7})
	require.NoError(t, err)

	got := f.pick(5, 10, 2)
	assert.Len(t, got, 4)
	assert.NotContains(t, got, 2)

	seen := map[int]bool{}
	for _, i := range got {
		assert.False(t, seen[i])
		seen[i] = true
	}
}
