package rcon

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client speaks RCON to one server. A client holds at most one live
// session; Connect after an end starts a fresh session over a new
// transport. The notification channel spans the client's lifetime,
// with end events marking session boundaries.
//
// Overlapping control operations (Connect racing Disconnect) are a
// caller discipline concern; the client keeps itself consistent but
// makes no fairness promises between them.
type Client struct {
	cfg    Config
	log    zerolog.Logger
	events chan Event

	mu     sync.Mutex
	sess   *session
	idle   time.Duration
	onIdle func()
}

// New validates cfg and returns a disconnected client.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("addr", cfg.Addr()).Str("network", cfg.Network).Logger(),
		events: make(chan Event, cfg.EventBuffer),
	}, nil
}

// Events returns the notification channel. The engine never closes it
// and never consumes from it; callers that stop draining eventually
// stall the session reader.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect dials the configured endpoint and starts the handshake. The
// connect notification fires before Connect returns; auth follows
// synchronously for challenge-free UDP and asynchronously otherwise.
// Dial failures are returned, not emitted.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	tr, err := dialTransport(ctx, c.cfg)
	if err != nil {
		return err
	}

	s := newSession(c, tr)
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		tr.Close()
		return ErrAlreadyConnected
	}
	c.sess = s
	idle, onIdle := c.idle, c.onIdle
	c.mu.Unlock()

	if c.cfg.Network == NetworkTCP && idle > 0 {
		s.setIdle(idle, onIdle)
	}

	c.log.Info().Msg("connected")
	c.emit(Event{Kind: EventConnect})

	if err := s.handshake(); err != nil {
		s.close(false)
		return err
	}
	go s.readLoop()
	return nil
}

// Disconnect closes the live session, if any. The end notification and
// the failure of outstanding commands flow through the usual close
// path. Disconnecting a disconnected client is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	s.close(false)
	return nil
}

// Send dispatches one command. Over TCP the returned Command resolves
// when the correlated reply arrives; over UDP it is already complete
// and any reply surfaces later as a response notification.
func (c *Client) Send(commandText string) (*Command, error) {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s == nil {
		return nil, ErrNotConnected
	}
	return s.send(commandText)
}

// SetIdleTimeout arms an inactivity timeout on the stream transport:
// when no inbound data arrives for d, the connection is forced closed,
// fn runs, and the end notification follows. A non-positive d disarms.
// UDP sessions ignore it.
func (c *Client) SetIdleTimeout(d time.Duration, fn func()) {
	if c.cfg.Network != NetworkTCP {
		return
	}
	c.mu.Lock()
	c.idle, c.onIdle = d, fn
	s := c.sess
	c.mu.Unlock()
	if s != nil {
		s.setIdle(d, fn)
	}
}

// Connected reports whether a session is live. It does not imply
// authentication.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil
}

// Authenticated reports whether the live session finished its
// handshake.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	return s != nil && s.isAuthed()
}

// Pending reports how many commands await replies on the live session.
func (c *Client) Pending() int {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s == nil {
		return 0
	}
	return s.pending()
}

// Addr reports the configured endpoint address.
func (c *Client) Addr() string {
	return c.cfg.Addr()
}

// Network reports the configured wire dialect.
func (c *Client) Network() string {
	return c.cfg.Network
}

func (c *Client) emit(ev Event) {
	c.events <- ev
}

func (c *Client) sessionEnded(s *session) {
	c.mu.Lock()
	if c.sess == s {
		c.sess = nil
	}
	c.mu.Unlock()
	c.log.Info().Msg("session ended")
}
