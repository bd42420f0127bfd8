package service

import "sync"

// eventHub fans one attempt's engine events out to its WebSocket
// subscribers. Publishing never blocks: a subscriber that cannot keep up with
// one event per second loses ticks, which is harmless — every tick carries
// the absolute remaining time.
type eventHub struct {
	mu     sync.Mutex
	subs   map[chan SessionEvent]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan SessionEvent]struct{})}
}

func (h *eventHub) subscribe() (chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 8)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *eventHub) publish(ev SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
