package cache

import (
	"context"
	"fmt"
	"time"
)

// Key formats.
const (
	UserKeyPrefix       = "user:%d"
	GlobalFeedKeyPrefix = "feed:global:limit:%d"
	GlobalFeedPattern   = "feed:global:*"
)

// TTLs.
const (
	UserTTL       = 5 * time.Minute
	GlobalFeedTTL = 30 * time.Second
)

// UserKey is the cache key for the user with userID.
func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// GlobalFeedKey is the cache key for the first global feed page of size limit.
func GlobalFeedKey(limit int) string {
	return fmt.Sprintf(GlobalFeedKeyPrefix, limit)
}

// Invalidate deletes key. It is a no-op without Redis.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached user so the next lookup hits the database.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateGlobalFeed drops every cached first page of the global feed.
func InvalidateGlobalFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, GlobalFeedPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
