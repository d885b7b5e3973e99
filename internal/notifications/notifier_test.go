package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.Notify(context.Background(), 1, Event{Type: EventSubscribed}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, err := parseUserChannel(tt.expected)
		require.NoError(t, err)
		assert.Equal(t, tt.userID, id)
	}

	_, err := parseUserChannel("chat:conv:5")
	assert.Error(t, err)
	_, err = parseUserChannel("notifications:user:abc")
	assert.Error(t, err)
}

func TestNotifier_NotifyDeliversStampedEvent(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == UserChannel(7) {
			got <- payload
		}
	}))

	require.NoError(t, n.Notify(context.Background(), 7, Event{Type: EventVideoLiked, ActorID: 3, VideoID: 11}))

	select {
	case payload := <-got:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, EventVideoLiked, ev.Type)
		assert.Equal(t, uint(3), ev.ActorID)
		assert.Equal(t, uint(11), ev.VideoID)
		assert.True(t, fixed.Equal(ev.CreatedAt))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, time.Second, 10*time.Millisecond)
	<-payloads

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishUser(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool { return len(payloads) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}
