// Package notifications publishes post feed events over Redis and relays them
// to websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"agora/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// PostsChannel is the Redis channel carrying every feed event.
const PostsChannel = "events:posts"

// Feed event types.
const (
	EventPostCreated         = "post_created"
	EventPostDeleted         = "post_deleted"
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
	EventCommentDeleted      = "comment_deleted"
)

// Event is the envelope written to PostsChannel and forwarded verbatim to
// websocket clients.
type Event struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes feed events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostEvent publishes an event about postID.
func (n *Notifier) PublishPostEvent(ctx context.Context, eventType, postID string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(Event{
		Type:      eventType,
		PostID:    postID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, PostsChannel, string(raw)).Err()
}

// StartSubscriber subscribes to PostsChannel and calls onMessage for every
// payload until ctx is cancelled. The subscription is confirmed before it
// returns, so events published afterwards are not missed.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, PostsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", PostsChannel, err)
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
							middleware.Logger.Error("panic in feed subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
