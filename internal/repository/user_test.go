package repository

import (
	"context"
	"regexp"
	"testing"

	"socialnet/internal/cache"
	"socialnet/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantUsername string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email", "is_active"}).
					AddRow(1, "testuser", "test@example.com", true)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			wantUsername: "testuser",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.wantCode != "" {
				assert.True(t, models.HasCode(err, tt.wantCode))
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.wantUsername, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "dup", Email: "dup@example.com", Password: "x"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)
	assert.True(t, alice.IsActive)

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
		assert.True(t, models.HasCode(err, models.CodeConflict))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "other", Email: "alice@example.com", Password: "hash"})
		assert.True(t, models.HasCode(err, models.CodeConflict))
	})

	t.Run("login by email ignores case", func(t *testing.T) {
		u, err := repo.GetByLogin(ctx, "ALICE@Example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, alice.ID, u.ID)
	})

	t.Run("login by username is exact", func(t *testing.T) {
		u, err := repo.GetByLogin(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, u)

		u, err = repo.GetByLogin(ctx, "ALICE")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("taken", func(t *testing.T) {
		usernameTaken, emailTaken, err := repo.Taken(ctx, "alice", "fresh@example.com")
		require.NoError(t, err)
		assert.True(t, usernameTaken)
		assert.False(t, emailTaken)
	})

	t.Run("get by username", func(t *testing.T) {
		u, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)

		u, err = repo.GetByUsername(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "carol")

	require.NoError(t, repo.UpdateFields(ctx, u.ID, map[string]interface{}{"bio": ""}))
	require.NoError(t, repo.UpdateFields(ctx, u.ID, map[string]interface{}{"first_name": "Caroline", "bio": "hi"}))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caroline", got.FirstName)
	assert.Equal(t, "hi", got.Bio)

	err = repo.UpdateFields(ctx, 9999, map[string]interface{}{"bio": "x"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

// Swaps the package-level Redis client, so not parallel.
func TestUserRepository_UpdateFields_DropsCachedFeed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "dana")

	require.NoError(t, mr.Set(cache.GlobalFeedKey(20), "[]"))
	require.NoError(t, mr.Set(cache.GlobalFeedKey(50), "[]"))
	require.NoError(t, mr.Set(cache.UserKey(u.ID), "{}"))

	require.NoError(t, repo.UpdateFields(ctx, u.ID, map[string]interface{}{"is_active": false}))

	assert.False(t, mr.Exists(cache.GlobalFeedKey(20)))
	assert.False(t, mr.Exists(cache.GlobalFeedKey(50)))
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))
}

func TestUserRepository_SearchAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, "johnny")
	createUser(t, db, "johanna")
	createUser(t, db, "under_score")
	gone := createUser(t, db, "john_gone")
	deactivate(t, db, &models.User{}, gone.ID)

	t.Run("case-insensitive substring, active only", func(t *testing.T) {
		users, err := repo.Search(ctx, "JOH", 20, 0)
		require.NoError(t, err)
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username)
		}
		assert.Equal(t, []string{"johanna", "johnny"}, names)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		users, err := repo.Search(ctx, "_", 20, 0)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "under_score", users[0].Username)

		users, err = repo.Search(ctx, "%", 20, 0)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("matches first name", func(t *testing.T) {
		users, err := repo.Search(ctx, "firstunder", 20, 0)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("list excludes inactive", func(t *testing.T) {
		users, err := repo.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("active summaries", func(t *testing.T) {
		got, err := repo.ActiveSummaries(ctx, []uint{gone.ID, 1, 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, uint(1), got[0].ID)
	})
}
