package rcon

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Command is one dispatched command tracked until its reply arrives.
// Datagram sends return an already-completed Command because that
// framing carries no correlation id.
type Command struct {
	id   int32
	done chan struct{}
	body string
	err  error
}

func newCommand(id int32) *Command {
	return &Command{id: id, done: make(chan struct{})}
}

func completedCommand() *Command {
	c := &Command{done: make(chan struct{})}
	close(c.done)
	return c
}

// ID returns the request id correlating this command to its reply.
func (c *Command) ID() int32 { return c.id }

// Done is closed once the command resolves or fails.
func (c *Command) Done() <-chan struct{} { return c.done }

// Wait blocks until the command completes or ctx expires. The engine
// itself never times a command out; the reply either arrives on the
// session or the session ends.
func (c *Command) Wait(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return c.body, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Command) resolve(body string) {
	c.body = body
	close(c.done)
}

func (c *Command) fail(err error) {
	c.err = err
	close(c.done)
}

// requestID draws the pseudo-random non-negative 31-bit id for one
// send.
func requestID() int32 {
	return rand.Int32()
}

// pendingTable correlates in-flight request ids to their commands.
// Removal on first completion is what enforces the at-most-once
// guarantee; resolve and fail never touch a command twice.
type pendingTable struct {
	mu   sync.Mutex
	cmds map[int32]*Command
}

func newPendingTable() *pendingTable {
	return &pendingTable{cmds: make(map[int32]*Command)}
}

// register adds cmd under its id. A collision on a live session is
// reported, not retried.
func (t *pendingTable) register(cmd *Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.cmds[cmd.id]; exists {
		return fmt.Errorf("%w: id %d", ErrIDCollision, cmd.id)
	}
	t.cmds[cmd.id] = cmd
	return nil
}

// resolve completes the command registered under id. Unknown ids are
// ignored so unsolicited or late replies cannot fault the session.
func (t *pendingTable) resolve(id int32, body string) bool {
	cmd := t.take(id)
	if cmd == nil {
		return false
	}
	cmd.resolve(body)
	return true
}

// fail completes the command registered under id with err, observing
// the same no-op-if-absent rule as resolve.
func (t *pendingTable) fail(id int32, err error) bool {
	cmd := t.take(id)
	if cmd == nil {
		return false
	}
	cmd.fail(err)
	return true
}

// failAll drains the table, failing every outstanding command with err.
// It returns how many commands were drained.
func (t *pendingTable) failAll(err error) int {
	t.mu.Lock()
	drained := make([]*Command, 0, len(t.cmds))
	for id, cmd := range t.cmds {
		drained = append(drained, cmd)
		delete(t.cmds, id)
	}
	t.mu.Unlock()

	for _, cmd := range drained {
		cmd.fail(err)
	}
	return len(drained)
}

func (t *pendingTable) take(id int32) *Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	cmd := t.cmds[id]
	delete(t.cmds, id)
	return cmd
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cmds)
}
