package cache

import (
	"context"
	"fmt"
	"time"
)

// Only plain entity rows are cached. Counts and viewer flags are always
// computed per request.
const (
	UserKeyPrefix  = "user:%d"
	VideoKeyPrefix = "video:%d"
)

const (
	UserTTL  = 5 * time.Minute
	VideoTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func VideoKey(videoID uint) string {
	return fmt.Sprintf(VideoKeyPrefix, videoID)
}

// Invalidate drops keys. Failures only cost a stale read until TTL expiry.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_ = client.Del(ctx, keys...).Err()
}

// InvalidateUser drops the cached user record.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateVideo drops the cached video row.
func InvalidateVideo(ctx context.Context, videoID uint) {
	Invalidate(ctx, VideoKey(videoID))
}
