package rcon

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Networks accepted by Config.Network.
const (
	NetworkTCP = "tcp"
	NetworkUDP = "udp"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultEventBuffer = 64

	// readBufferBytes sizes one transport read. Servers cap packets well
	// below this; larger stream payloads simply span multiple reads.
	readBufferBytes = 4096
)

// DialFunc opens the raw connection for a session. Tests substitute
// in-memory pipes here.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config describes one RCON endpoint and how to speak to it.
type Config struct {
	Host     string
	Port     int
	Password string

	// Network selects the wire dialect: NetworkTCP for length-prefixed
	// stream framing, NetworkUDP for challenge/response datagrams.
	Network string

	// DisableChallenge skips the UDP challenge handshake; the session
	// marks itself authenticated right after the ack datagram. Ignored
	// for TCP.
	DisableChallenge bool

	DialTimeout time.Duration

	// EventBuffer sizes the notification channel. Consumers that stop
	// draining eventually stall the session's reader.
	EventBuffer int

	// Logger receives engine diagnostics. Nil means silent.
	Logger *zerolog.Logger

	// Dial overrides the platform dialer.
	Dial DialFunc
}

func DefaultConfig() Config {
	return Config{
		Network:     NetworkTCP,
		DialTimeout: defaultDialTimeout,
		EventBuffer: defaultEventBuffer,
	}
}

// WithDefaults fills zero-valued fields without touching set ones.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Network == "" {
		c.Network = def.Network
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = def.DialTimeout
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.Network {
	case NetworkTCP, NetworkUDP:
	default:
		return fmt.Errorf("%w: network %q", ErrInvalidConfig, c.Network)
	}
	return nil
}

// Addr renders the dial address for the configured endpoint.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
