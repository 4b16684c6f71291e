package pubsub

import (
	"context"
	"sync"
)

// MemoryNotifier is an in-process hub used when no Redis is configured.
type MemoryNotifier struct {
	mu     sync.Mutex
	subs   map[string]map[chan struct{}]struct{}
	closed bool
}

var _ Notifier = &MemoryNotifier{}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[chan struct{}]struct{})}
}

func (n *MemoryNotifier) Publish(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	for ch := range n.subs[userID] {
		signal(ch)
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, nil, ErrClosed
	}

	ch := make(chan struct{}, 1)
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[chan struct{}]struct{})
	}
	n.subs[userID][ch] = struct{}{}

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			n.mu.Lock()
			defer n.mu.Unlock()
			if set, ok := n.subs[userID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(n.subs, userID)
				}
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	return ch, stop, nil
}

func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	for userID, set := range n.subs {
		for ch := range set {
			close(ch)
		}
		delete(n.subs, userID)
	}
	return nil
}
