package server

import (
	"fmt"
	"net/http"
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFlow(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.register("alice")
	bobToken, bobID := env.register("bob")
	bobPath := fmt.Sprintf("/api/follow/%d", bobID)

	resp := env.do(http.MethodPost, bobPath, aliceToken, nil)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Body)
	assert.Equal(t, "bob", resp.Body["following"].(map[string]interface{})["username"])

	t.Run("duplicate follow conflicts", func(t *testing.T) {
		resp := env.do(http.MethodPost, bobPath, aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		resp := env.do(http.MethodPost, fmt.Sprintf("/api/follow/%d", aliceID), aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "You cannot follow yourself", resp.Body["error"])
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/follow/9999", aliceToken, nil).Status)
	})

	t.Run("lists and status", func(t *testing.T) {
		followers := env.do(http.MethodGet, bobPath+"/followers", "", nil)
		require.Equal(t, http.StatusOK, followers.Status)
		assert.Equal(t, float64(1), followers.Body["count"])
		assert.Equal(t, "alice", listOf(t, followers.Body, "followers")[0]["username"])

		following := env.do(http.MethodGet, fmt.Sprintf("/api/follow/%d/following", aliceID), "", nil)
		require.Equal(t, http.StatusOK, following.Status)
		assert.Equal(t, float64(1), following.Body["count"])

		status := env.do(http.MethodGet, bobPath+"/status", aliceToken, nil)
		require.Equal(t, http.StatusOK, status.Status)
		assert.Equal(t, true, status.Body["isFollowing"])

		status = env.do(http.MethodGet, fmt.Sprintf("/api/follow/%d/status", aliceID), bobToken, nil)
		require.Equal(t, http.StatusOK, status.Status)
		assert.Equal(t, false, status.Body["isFollowing"])
	})

	t.Run("unfollow then follow again", func(t *testing.T) {
		resp := env.do(http.MethodDelete, bobPath, aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)

		resp = env.do(http.MethodDelete, bobPath, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "You are not following this user", resp.Body["error"])

		resp = env.do(http.MethodPost, bobPath, aliceToken, nil)
		assert.Equal(t, http.StatusCreated, resp.Status)

		var count int64
		require.NoError(t, env.db.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", aliceID, bobID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("inactive users drop out of lists", func(t *testing.T) {
		require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", aliceID).Update("is_active", false).Error)
		followers := env.do(http.MethodGet, bobPath+"/followers", "", nil)
		require.Equal(t, http.StatusOK, followers.Status)
		assert.Equal(t, float64(0), followers.Body["count"])
	})
}

func TestMutualFollowing(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register("alice")
	bobToken, bobID := env.register("bob")
	_, carolID := env.register("carol")
	_, daveID := env.register("dave")

	for _, target := range []uint{carolID, daveID} {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, fmt.Sprintf("/api/follow/%d", target), aliceToken, nil).Status)
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, fmt.Sprintf("/api/follow/%d", carolID), bobToken, nil).Status)

	resp := env.do(http.MethodGet, fmt.Sprintf("/api/follow/%d/mutual", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(1), resp.Body["count"])
	assert.Equal(t, "carol", listOf(t, resp.Body, "mutualFollowers")[0]["username"])

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/follow/%d/mutual", daveID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, listOf(t, resp.Body, "mutualFollowers"))
}
