// Package testlog routes zerolog output through the test runner so it
// only surfaces for failing tests and -v runs.
package testlog

import (
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type writer struct {
	t    *testing.T
	mu   sync.Mutex
	done bool
}

// Write drops lines arriving after the test finished; session readers
// may still be winding down when the runner moves on.
func (w *writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done {
		w.t.Log(strings.TrimRight(string(p), "\n"))
	}
	return len(p), nil
}

// Start returns a debug-level logger bound to t.
func Start(t *testing.T) *zerolog.Logger {
	t.Helper()
	w := &writer{t: t}
	t.Cleanup(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	})
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	logger := zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logger.Debug().Str("test", t.Name()).Msg("test logger started")
	return &logger
}
