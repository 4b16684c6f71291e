package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	rc := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := rc.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastError(t *testing.T) {
	rc := &RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := rc.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("still down")
	})

	assert.EqualError(t, err, "still down")
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnUnrecoverable(t *testing.T) {
	rc := DefaultRetryConfig()
	sentinel := errors.New("bad credentials")

	calls := 0
	err := rc.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return retry.Unrecoverable(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursCancelledContext(t *testing.T) {
	rc := &RetryConfig{Attempts: 5, Delay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := rc.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
