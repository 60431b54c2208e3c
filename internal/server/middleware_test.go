package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialnet/internal/auth"
	"socialnet/internal/models"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.UserCard, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.UserCard), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserCard, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]models.UserCard), args.Error(1)
}

func (m *MockUserRepository) ActiveSummaries(ctx context.Context, ids []uint) ([]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func TestServer_AuthRequired(t *testing.T) {
	tokens := auth.NewTokenManager(testJWTSecret, "socialnet-test", time.Hour)
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "active", IsActive: true}, nil)
	repo.On("GetByID", mock.Anything, uint(2)).Return(&models.User{ID: 2, Username: "inactive", IsActive: false}, nil)
	repo.On("GetByID", mock.Anything, uint(3)).Return(nil, models.NewNotFoundError("User", 3))
	repo.On("GetByID", mock.Anything, uint(4)).Return(nil, models.NewInternalError(errors.New("db down")))

	s := &Server{authService: service.NewAuthService(repo, tokens, auth.NewPasswordHasher(4))}
	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c), "username": currentUser(c).Username})
	})

	issue := func(id uint) string {
		token, err := tokens.Issue(id)
		require.NoError(t, err)
		return token
	}
	expired, err := auth.NewTokenManager(testJWTSecret, "socialnet-test", -time.Minute).Issue(1)
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("a-completely-different-secret-of-32-chars", "socialnet-test", time.Hour).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"valid token", "Bearer " + issue(1), http.StatusOK},
		{"lowercase scheme", "bearer " + issue(1), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + issue(1), http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"inactive user", "Bearer " + issue(2), http.StatusForbidden},
		{"deleted user", "Bearer " + issue(3), http.StatusForbidden},
		{"lookup failure", "Bearer " + issue(4), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("query token only accepted on websocket path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+issue(1), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSecurityMiddleware(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
	checks := resp.Body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])

	resp = env.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Contains(t, resp.Body, "error")
}
