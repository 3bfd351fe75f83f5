package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"socialhub/internal/middleware"
	"socialhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPattern = "notifications:user:*"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a raw payload to a user's channel. A nil client is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return fmt.Errorf("publish to user %d: %w", userID, err)
	}
	return nil
}

// PublishEvent encodes and publishes an event to each user. Failures are
// logged; delivery is best-effort and never fails the caller.
func (n *Notifier) PublishEvent(ctx context.Context, event Event, userIDs ...uint) {
	if n == nil || n.rdb == nil {
		return
	}
	payload, err := event.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "encode event", slog.String("error", err.Error()))
		return
	}
	for _, id := range userIDs {
		if err := n.PublishUser(ctx, id, payload); err != nil {
			middleware.Logger.WarnContext(ctx, "publish event failed",
				slog.String("event", event.Type),
				slog.Uint64("user_id", uint64(id)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// StartPatternSubscriber subscribes to every user channel and calls
// onMessage for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
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
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
