// Package notifications delivers channel activity to connected owners.
//
// Services publish events into per-user Redis channels; every API instance
// runs a Hub subscribed to those channels that forwards payloads to the
// websocket connections it holds.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"vidtube/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	userChannelFormat = userChannelPrefix + "%d"
	userChannelGlob   = userChannelPrefix + "*"
)

// Event types pushed to channel owners.
const (
	EventSubscribed   = "channel_subscribed"
	EventVideoLiked   = "video_liked"
	EventCommentAdded = "comment_added"
)

// Event is the JSON payload delivered to a user's sockets.
type Event struct {
	Type          string    `json:"type"`
	ActorID       uint      `json:"actorId"`
	ActorUsername string    `json:"actorUsername,omitempty"`
	VideoID       uint      `json:"videoId,omitempty"`
	CommentID     uint      `json:"commentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserChannel is the Redis channel a user's events are published on.
func UserChannel(userID uint) string {
	return fmt.Sprintf(userChannelFormat, userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// Notify stamps and publishes an event for userID.
func (n *Notifier) Notify(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = n.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.PublishUser(ctx, userID, string(payload))
}

// StartPatternSubscriber subscribes to every user channel and calls
// onMessage for each payload until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelGlob)
	// Wait for the subscription to be confirmed so nothing published after
	// we return is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelGlob, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("notification subscriber panic",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
