package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/observability"
	"github.com/brakken/rconctl/internal/rcon"
)

var ErrUnknownTarget = errors.New("console: unknown target")

// StreamEvent is the wire form of one occurrence pushed to WebSocket
// subscribers.
type StreamEvent struct {
	Target  string    `json:"target"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Command string    `json:"command,omitempty"`
	Body    string    `json:"body,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// TargetStatus is one target's snapshot for the API.
type TargetStatus struct {
	Name          string `json:"name"`
	Addr          string `json:"addr"`
	Network       string `json:"network"`
	Connected     bool   `json:"connected"`
	Authenticated bool   `json:"authenticated"`
	Pending       int    `json:"pending"`
	LastError     string `json:"last_error,omitempty"`
}

// ManagerOptions tune a Manager beyond the configuration file.
type ManagerOptions struct {
	Logger       zerolog.Logger
	HistoryLimit int

	// Dial overrides the engine dialer for every target. Tests wire
	// in-memory pipes here.
	Dial rcon.DialFunc
}

type target struct {
	cfg     config.Target
	exec    time.Duration
	client  *rcon.Client
	history *history
	hub     *hub

	mu        sync.Mutex
	lastError string
}

// Manager owns one engine client per configured target and pumps each
// client's notifications into history, metrics, and the stream hub.
type Manager struct {
	log     zerolog.Logger
	targets map[string]*target
	names   []string
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewManager builds the per-target clients and starts their event
// pumps. Target configs are assumed validated by config.Load.
func NewManager(targets []config.Target, opts ManagerOptions) (*Manager, error) {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = config.DefaultHistoryLimit
	}

	m := &Manager{
		log:     opts.Logger,
		targets: make(map[string]*target, len(targets)),
		done:    make(chan struct{}),
	}
	for _, tc := range targets {
		deadline, err := tc.ExecDeadline()
		if err != nil {
			return nil, err
		}
		ecfg := config.EngineConfig(tc)
		logger := opts.Logger.With().Str("target", tc.Name).Logger()
		ecfg.Logger = &logger
		ecfg.Dial = opts.Dial
		client, err := rcon.New(ecfg)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", tc.Name, err)
		}
		t := &target{
			cfg:     tc,
			exec:    deadline,
			client:  client,
			history: newHistory(opts.HistoryLimit),
			hub:     newHub(),
		}
		m.targets[tc.Name] = t
		m.names = append(m.names, tc.Name)
	}
	sort.Strings(m.names)

	for _, t := range m.targets {
		m.wg.Add(1)
		go m.pump(t)
	}
	return m, nil
}

// Close disconnects every target and stops the event pumps.
func (m *Manager) Close() {
	close(m.done)
	for _, t := range m.targets {
		_ = t.client.Disconnect()
	}
	m.wg.Wait()
}

// Targets snapshots every target in name order.
func (m *Manager) Targets() []TargetStatus {
	out := make([]TargetStatus, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.targets[name].status())
	}
	return out
}

// Connect dials the named target. Engine errors pass through so the
// API layer can map already-connected separately.
func (m *Manager) Connect(ctx context.Context, name string) error {
	t, err := m.target(name)
	if err != nil {
		return err
	}
	if err := t.client.Connect(ctx); err != nil {
		t.setLastError(err)
		return err
	}
	switch t.client.Network() {
	case rcon.NetworkTCP:
		observability.RecordPacketSent(rcon.NetworkTCP, "auth")
	case rcon.NetworkUDP:
		if t.cfg.DisableChallenge {
			observability.RecordPacketSent(rcon.NetworkUDP, "ack")
		} else {
			observability.RecordPacketSent(rcon.NetworkUDP, "challenge")
		}
	}
	return nil
}

// Disconnect closes the named target's session, if any.
func (m *Manager) Disconnect(name string) error {
	t, err := m.target(name)
	if err != nil {
		return err
	}
	return t.client.Disconnect()
}

// Exec dispatches one command and, for stream targets, waits for the
// correlated reply under the target's exec deadline. Datagram targets
// return immediately with an empty body.
func (m *Manager) Exec(ctx context.Context, name, command string) (string, error) {
	t, err := m.target(name)
	if err != nil {
		return "", err
	}

	cmd, err := t.client.Send(command)
	if err != nil {
		t.setLastError(err)
		return "", err
	}
	observability.RecordPacketSent(t.client.Network(), "command")
	observability.SetPendingCommands(name, t.client.Pending())

	entry := HistoryEntry{At: time.Now(), Kind: "command", Command: command}
	t.history.append(entry)
	t.hub.broadcast(StreamEvent{Target: name, At: entry.At, Kind: entry.Kind, Command: command})

	ctx, cancel := context.WithTimeout(ctx, t.exec)
	defer cancel()
	body, err := cmd.Wait(ctx)
	observability.SetPendingCommands(name, t.client.Pending())
	if err != nil {
		t.setLastError(err)
		return "", err
	}
	return body, nil
}

// History returns the named target's retained entries, oldest first.
func (m *Manager) History(name string) ([]HistoryEntry, error) {
	t, err := m.target(name)
	if err != nil {
		return nil, err
	}
	return t.history.snapshot(), nil
}

// Subscribe attaches a stream consumer to the named target. The cancel
// must be called when the consumer goes away.
func (m *Manager) Subscribe(name string) (<-chan []byte, func(), error) {
	t, err := m.target(name)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := t.hub.subscribe()
	return ch, cancel, nil
}

func (m *Manager) target(name string) (*target, error) {
	t, ok := m.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return t, nil
}

// pump drains one client's notification channel for the manager's
// lifetime, translating engine events into history, metrics, and
// stream broadcasts.
func (m *Manager) pump(t *target) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case ev := <-t.client.Events():
			m.handleEvent(t, ev)
		}
	}
}

func (m *Manager) handleEvent(t *target, ev rcon.Event) {
	kind := ev.Kind.String()
	observability.RecordEvent(kind)
	observability.SetPendingCommands(t.cfg.Name, t.client.Pending())

	switch ev.Kind {
	case rcon.EventResponse:
		observability.RecordPacketReceived(t.client.Network(), "response")
	case rcon.EventServer:
		observability.RecordPacketReceived(t.client.Network(), "server")
	case rcon.EventAuth:
		t.setLastError(nil)
	case rcon.EventError:
		if errors.Is(ev.Err, rcon.ErrAuthFailed) {
			observability.RecordAuthFailure()
		}
		if errors.Is(ev.Err, rcon.ErrMalformed) {
			observability.RecordMalformedInbound()
		}
		t.setLastError(ev.Err)
		m.log.Warn().Str("target", t.cfg.Name).Err(ev.Err).Msg("target error")
	}

	entry := HistoryEntry{At: time.Now(), Kind: kind, Body: ev.Body}
	stream := StreamEvent{Target: t.cfg.Name, At: entry.At, Kind: kind, Body: ev.Body}
	if ev.Err != nil {
		stream.Error = ev.Err.Error()
		entry.Body = ev.Err.Error()
	}
	t.history.append(entry)
	t.hub.broadcast(stream)
}

func (t *target) status() TargetStatus {
	t.mu.Lock()
	lastError := t.lastError
	t.mu.Unlock()
	return TargetStatus{
		Name:          t.cfg.Name,
		Addr:          t.client.Addr(),
		Network:       t.client.Network(),
		Connected:     t.client.Connected(),
		Authenticated: t.client.Authenticated(),
		Pending:       t.client.Pending(),
		LastError:     lastError,
	}
}

func (t *target) setLastError(err error) {
	t.mu.Lock()
	if err == nil {
		t.lastError = ""
	} else {
		t.lastError = err.Error()
	}
	t.mu.Unlock()
}
