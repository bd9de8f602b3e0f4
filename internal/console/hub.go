package console

import (
	"encoding/json"
	"sync"
)

// subscriberBuffer bounds each subscriber's send queue. A subscriber
// that falls this far behind is dropped rather than allowed to stall
// the event pump.
const subscriberBuffer = 32

// hub fans one target's stream events out to its live subscribers.
// Delivery is best effort: the pump never blocks on a slow consumer.
type hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan []byte]struct{})}
}

// subscribe registers a consumer. The returned cancel is idempotent
// and closes the channel, so writers must tolerate a closed receive.
func (h *hub) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			_, live := h.subs[ch]
			delete(h.subs, ch)
			h.mu.Unlock()
			if live {
				close(ch)
			}
		})
	}
	return ch, cancel
}

// broadcast marshals v once and queues it to every subscriber. Full
// queues mark their subscriber dropped; the dropped channel is closed
// so its consumer observes the cut.
func (h *hub) broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	var dropped []chan []byte
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
			delete(h.subs, ch)
			dropped = append(dropped, ch)
		}
	}
	h.mu.Unlock()

	for _, ch := range dropped {
		close(ch)
	}
}

func (h *hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
