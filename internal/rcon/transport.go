package rcon

import (
	"context"
	"net"
	"sync"
	"time"
)

// Transport moves raw bytes for one established connection. Stream
// transports hand Recv arbitrary segments; datagram transports hand it
// exactly one datagram per call. A session owns its transport for the
// whole connection and replaces it, never mutates it, across connects.
type Transport interface {
	// Recv blocks for the next inbound chunk. The returned slice is
	// only valid until the next call.
	Recv() ([]byte, error)
	Send(p []byte) error
	// SetIdleTimeout arms a rolling inactivity deadline on reads. A
	// non-positive duration disarms it, including for a read already in
	// progress.
	SetIdleTimeout(d time.Duration)
	RemoteAddr() net.Addr
	Close() error
}

// netTransport adapts a net.Conn. Connected UDP sockets already
// deliver one datagram per Read, so the one adapter covers both
// dialects.
type netTransport struct {
	conn net.Conn
	buf  []byte

	mu   sync.Mutex
	idle time.Duration
}

func dialTransport(ctx context.Context, cfg Config) (Transport, error) {
	dial := cfg.Dial
	if dial == nil {
		d := net.Dialer{Timeout: cfg.DialTimeout}
		dial = d.DialContext
	}
	conn, err := dial(ctx, cfg.Network, cfg.Addr())
	if err != nil {
		return nil, err
	}
	return &netTransport{conn: conn, buf: make([]byte, readBufferBytes)}, nil
}

func (t *netTransport) Recv() ([]byte, error) {
	if d := t.idleTimeout(); d > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
			return nil, err
		}
	}
	n, err := t.conn.Read(t.buf)
	if n > 0 {
		return t.buf[:n], nil
	}
	return nil, err
}

func (t *netTransport) Send(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.conn.Write(p)
	return err
}

func (t *netTransport) SetIdleTimeout(d time.Duration) {
	t.mu.Lock()
	t.idle = d
	t.mu.Unlock()

	if d > 0 {
		t.conn.SetReadDeadline(time.Now().Add(d))
	} else {
		t.conn.SetReadDeadline(time.Time{})
	}
}

func (t *netTransport) idleTimeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idle
}

func (t *netTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}
