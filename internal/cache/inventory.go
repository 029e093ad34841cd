package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%s"
	PostsListKey  = "posts:list"
	UserKeyPrefix = "user:%s"
)

const (
	PostTTL      = 30 * time.Minute
	PostsListTTL = 2 * time.Minute
	UserTTL      = 5 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePost drops the cached post and the feed it appears in.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID), PostsListKey)
}
