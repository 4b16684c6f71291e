package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier publishes change signals on one channel per user so that
// several API or bot instances observe each other's writes.
type RedisNotifier struct {
	rdb    *redis.Client
	prefix string
}

var _ Notifier = &RedisNotifier{}

func NewRedisNotifier(rdb *redis.Client, prefix string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, prefix: prefix}
}

func (n *RedisNotifier) channel(userID string) string {
	return n.prefix + userID
}

func (n *RedisNotifier) Publish(ctx context.Context, userID string) error {
	if err := n.rdb.Publish(ctx, n.channel(userID), "changed").Err(); err != nil {
		return fmt.Errorf("publish change for user: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	ps := n.rdb.Subscribe(ctx, n.channel(userID))

	// Wait for confirmation that subscription is created
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe to changes: %w", err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				signal(out)
			}
		}
	}()

	ctxzap.Debug(ctx, "subscribed to store changes", zap.String("channel", n.channel(userID)))

	return out, stop, nil
}

// Close is a no-op; the redis client is owned by the builder.
func (n *RedisNotifier) Close() error {
	return nil
}
