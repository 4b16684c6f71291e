package workspace

import (
	"sync"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

// hub fans updates out to listeners. A listener that falls behind loses
// updates rather than blocking the publisher.
type hub struct {
	mu        sync.Mutex
	listeners map[chan entity.Update]struct{}
	buffer    int
	closed    bool
}

func newHub(buffer int) *hub {
	if buffer < 1 {
		buffer = 1
	}
	return &hub{
		listeners: make(map[chan entity.Update]struct{}),
		buffer:    buffer,
	}
}

func (h *hub) subscribe() (<-chan entity.Update, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan entity.Update, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.listeners[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.listeners[ch]; ok {
			delete(h.listeners, ch)
			close(ch)
		}
	}
}

func (h *hub) publish(u entity.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.listeners {
		select {
		case ch <- u:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.listeners {
		close(ch)
	}
	h.listeners = nil
}
