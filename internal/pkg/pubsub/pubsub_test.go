package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receives(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed")
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}
}

func silent(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryNotifierDeliversPerUser(t *testing.T) {
	n := NewMemoryNotifier()
	defer n.Close()
	ctx := context.Background()

	alice, stopAlice, err := n.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer stopAlice()
	bob, stopBob, err := n.Subscribe(ctx, "bob")
	require.NoError(t, err)
	defer stopBob()

	require.NoError(t, n.Publish(ctx, "alice"))

	receives(t, alice)
	silent(t, bob)
}

func TestMemoryNotifierCoalesces(t *testing.T) {
	n := NewMemoryNotifier()
	defer n.Close()
	ctx := context.Background()

	ch, stop, err := n.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Publish(ctx, "alice"))
	}

	receives(t, ch)
	silent(t, ch)
}

func TestMemoryNotifierStopClosesChannel(t *testing.T) {
	n := NewMemoryNotifier()
	ctx, cancel := context.WithCancel(context.Background())

	ch, _, err := n.Subscribe(ctx, "alice")
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Publish(context.Background(), "alice"), ErrClosed)
}

func TestRedisNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	writer := NewRedisNotifier(rdb, "copilot:store:")
	reader := NewRedisNotifier(rdb, "copilot:store:")
	ctx := context.Background()

	ch, stop, err := reader.Subscribe(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, writer.Publish(ctx, "bob"))
	silent(t, ch)

	require.NoError(t, writer.Publish(ctx, "alice"))
	receives(t, ch)

	stop()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
