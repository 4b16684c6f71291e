package pubsub

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("notifier closed")

// Notifier carries "this user's data changed" signals between store writers
// and watchers. Signals are coalesced: a slow watcher sees at least one
// notification after the last write, never a backlog.
type Notifier interface {
	Publish(ctx context.Context, userID string) error
	// Subscribe returns a channel that receives a value after every publish
	// for userID. The stop func releases the subscription and closes the channel.
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
	Close() error
}

// signal performs a non-blocking send so one pending value covers any
// number of writes.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
