package console

import (
	"sync"
	"time"
)

// HistoryEntry is one recorded occurrence on a target: a dispatched
// command or an engine notification.
type HistoryEntry struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Command string    `json:"command,omitempty"`
	Body    string    `json:"body,omitempty"`
}

// history is a bounded ring of entries; the oldest fall off first.
type history struct {
	mu      sync.Mutex
	limit   int
	entries []HistoryEntry
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) append(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// snapshot returns the retained entries oldest first.
func (h *history) snapshot() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
