package console

import (
	"strconv"
	"testing"
	"time"
)

func TestHistoryBoundsRetention(t *testing.T) {
	h := newHistory(3)
	for i := 0; i < 5; i++ {
		h.append(HistoryEntry{At: time.Now(), Kind: "response", Body: strconv.Itoa(i)})
	}

	got := h.snapshot()
	if len(got) != 3 {
		t.Fatalf("retained %d entries, want 3", len(got))
	}
	for i, entry := range got {
		if want := strconv.Itoa(i + 2); entry.Body != want {
			t.Fatalf("entry[%d].Body = %q, want %q", i, entry.Body, want)
		}
	}
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := newHistory(4)
	h.append(HistoryEntry{Kind: "command", Command: "status"})

	snap := h.snapshot()
	snap[0].Command = "mutated"

	if got := h.snapshot()[0].Command; got != "status" {
		t.Fatalf("history mutated through snapshot: %q", got)
	}
}
