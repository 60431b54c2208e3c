package repository

import (
	"context"
	"testing"
	"time"

	"socialnet/internal/database"
	"socialnet/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hash",
		FirstName: "First" + username,
		LastName:  "Last",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// deactivate flips IsActive after insert; gorm skips false for a default:true column on Create.
func deactivate(t *testing.T, db *gorm.DB, model interface{}, id uint) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).Update("is_active", false).Error)
}

func createPost(t *testing.T, db *gorm.DB, userID uint, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Content: content, CreatedAt: at}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func createComment(t *testing.T, db *gorm.DB, userID, postID uint, content string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{UserID: userID, PostID: postID, Content: content, CreatedAt: at}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), c))
	return c
}
