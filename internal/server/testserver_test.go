package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialnet/internal/config"
	"socialnet/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "server-test-secret-with-at-least-32-chars"

func testConfig() *config.Config {
	return &config.Config{
		Env:          "test",
		Port:         "0",
		JWTSecret:    testJWTSecret,
		JWTIssuer:    "socialnet-test",
		TokenTTL:     time.Hour,
		BcryptCost:   4,
		DBDriver:     "sqlite",
		FeatureFlags: "realtime_notifications=on,global_feed_cache=on",
	}
}

type testEnv struct {
	t      *testing.T
	server *Server
	app    *fiber.App
	db     *gorm.DB
}

// newTestEnv wires a Server to a private in-memory SQLite database without Redis.
func newTestEnv(t *testing.T) *testEnv {
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

	s, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	return &testEnv{t: t, server: s, app: s.NewApp(), db: db}
}

type apiResponse struct {
	Status int
	Body   map[string]interface{}
}

func (e *testEnv) do(method, path, token string, body interface{}) apiResponse {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{Status: resp.StatusCode, Body: map[string]interface{}{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

// register creates an account and returns its token and id.
func (e *testEnv) register(username string) (string, uint) {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "password123",
		"firstName": "First",
		"lastName":  "Last",
	})
	require.Equal(e.t, http.StatusCreated, resp.Status, resp.Body)
	user := resp.Body["user"].(map[string]interface{})
	return resp.Body["token"].(string), uint(user["id"].(float64))
}

// createPost creates a post and returns its id.
func (e *testEnv) createPost(token, content string) uint {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/posts", token, map[string]string{"content": content})
	require.Equal(e.t, http.StatusCreated, resp.Status, resp.Body)
	return uint(resp.Body["post"].(map[string]interface{})["id"].(float64))
}

func listOf(t *testing.T, body map[string]interface{}, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := body[key].([]interface{})
	require.True(t, ok, "missing list %q in %v", key, body)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]interface{}))
	}
	return out
}
