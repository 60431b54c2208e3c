package server

import (
	"fmt"
	"net/http"
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.register("alice")
	bobToken, _ := env.register("bob")

	postID := env.createPost(aliceToken, "hello world")
	path := fmt.Sprintf("/api/posts/%d", postID)

	t.Run("get includes author and comments", func(t *testing.T) {
		resp := env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		post := resp.Body["post"].(map[string]interface{})
		assert.Equal(t, "hello world", post["content"])
		assert.Equal(t, float64(0), post["likes"])
		assert.Equal(t, "alice", post["author"].(map[string]interface{})["username"])
		assert.Equal(t, float64(aliceID), post["authorId"])
	})

	t.Run("likes accumulate without per-user dedup", func(t *testing.T) {
		resp := env.do(http.MethodPost, path+"/like", bobToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, float64(1), resp.Body["likes"])

		resp = env.do(http.MethodPost, path+"/like", bobToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, float64(2), resp.Body["likes"])
	})

	t.Run("non-owner cannot update or delete", func(t *testing.T) {
		resp := env.do(http.MethodPut, path, bobToken, map[string]string{"content": "hijack"})
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Post not found or unauthorized", resp.Body["error"])

		resp = env.do(http.MethodDelete, path, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Post not found or unauthorized", resp.Body["error"])
	})

	t.Run("owner update keeps likes", func(t *testing.T) {
		resp := env.do(http.MethodPut, path, aliceToken, map[string]string{"content": "edited"})
		require.Equal(t, http.StatusOK, resp.Status)
		post := resp.Body["post"].(map[string]interface{})
		assert.Equal(t, "edited", post["content"])
		assert.Equal(t, float64(2), post["likes"])
	})

	t.Run("soft delete hides post but keeps row", func(t *testing.T) {
		resp := env.do(http.MethodDelete, path, aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)

		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, "", nil).Status)
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, path+"/like", bobToken, nil).Status)

		feed := env.do(http.MethodGet, "/api/posts", "", nil)
		require.Equal(t, http.StatusOK, feed.Status)
		assert.Empty(t, listOf(t, feed.Body, "posts"))

		var stored models.Post
		require.NoError(t, env.db.First(&stored, postID).Error)
		assert.False(t, stored.IsActive)

		resp = env.do(http.MethodDelete, path, aliceToken, nil)
		assert.Equal(t, http.StatusOK, resp.Status, "repeat delete by owner succeeds")
	})
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("writer")

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"empty content", map[string]interface{}{"content": "   "}, http.StatusBadRequest},
		{"bad image url", map[string]interface{}{"content": "x", "imageUrl": "ftp://host/x.png"}, http.StatusBadRequest},
		{"with image", map[string]interface{}{"content": "x", "imageUrl": "https://cdn.example.com/x.png"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/api/posts", token, tt.body)
			assert.Equal(t, tt.status, resp.Status, resp.Body)
		})
	}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/posts", "", map[string]string{"content": "x"}).Status)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/posts/abc", "", nil).Status)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register("alice")
	bobToken, _ := env.register("bob")
	postID := env.createPost(aliceToken, "discuss")
	commentsPath := fmt.Sprintf("/api/posts/%d/comments", postID)

	resp := env.do(http.MethodPost, commentsPath, bobToken, map[string]string{"content": "first!"})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Body)
	comment := resp.Body["comment"].(map[string]interface{})
	commentID := uint(comment["id"].(float64))
	assert.Equal(t, "bob", comment["author"].(map[string]interface{})["username"])

	post := env.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil).Body["post"].(map[string]interface{})
	assert.Len(t, post["comments"], 1)

	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPost, commentsPath, bobToken, map[string]string{"content": ""}).Status)
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodPost, "/api/posts/9999/comments", bobToken, map[string]string{"content": "x"}).Status)

	deletePath := fmt.Sprintf("%s/%d", commentsPath, commentID)
	t.Run("post owner cannot delete another user's comment", func(t *testing.T) {
		resp := env.do(http.MethodDelete, deletePath, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Comment not found or unauthorized", resp.Body["error"])
	})

	t.Run("comment must belong to addressed post", func(t *testing.T) {
		otherPost := env.createPost(aliceToken, "elsewhere")
		resp := env.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d/comments/%d", otherPost, commentID), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("author deletes", func(t *testing.T) {
		resp := env.do(http.MethodDelete, deletePath, bobToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)
		post := env.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil).Body["post"].(map[string]interface{})
		assert.Empty(t, post["comments"])
	})
}

func TestFeeds(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register("alice")
	bobToken, bobID := env.register("bob")
	carolToken, _ := env.register("carol")

	env.createPost(aliceToken, "alice post")
	env.createPost(bobToken, "bob post")
	env.createPost(carolToken, "carol post")

	global := env.do(http.MethodGet, "/api/posts?limit=2", "", nil)
	require.Equal(t, http.StatusOK, global.Status)
	assert.Len(t, listOf(t, global.Body, "posts"), 2)

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, fmt.Sprintf("/api/follow/%d", bobID), aliceToken, nil).Status)

	personal := env.do(http.MethodGet, "/api/posts/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, personal.Status)
	contents := make([]string, 0)
	for _, p := range listOf(t, personal.Body, "posts") {
		contents = append(contents, p["content"].(string))
	}
	assert.ElementsMatch(t, []string{"alice post", "bob post"}, contents)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/posts/feed", "", nil).Status)
}
