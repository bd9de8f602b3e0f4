package rcon

import "errors"

var (
	// ErrInvalidConfig reports a Config that cannot describe a dialable
	// endpoint.
	ErrInvalidConfig = errors.New("rcon: invalid config")

	// ErrAuthFailed reports a server rejection of the password. The
	// connection stays open; disconnecting is the caller's decision.
	ErrAuthFailed = errors.New("rcon: authentication failed")

	// ErrAwaitingChallenge reports a datagram send attempted before the
	// challenge token arrived. Nothing is written to the wire.
	ErrAwaitingChallenge = errors.New("rcon: challenge token not yet received")

	// ErrMalformed reports inbound bytes that do not parse as protocol
	// traffic.
	ErrMalformed = errors.New("rcon: malformed inbound data")

	// ErrConnectionClosed fails commands still outstanding when their
	// session ends.
	ErrConnectionClosed = errors.New("rcon: connection closed")

	ErrNotConnected     = errors.New("rcon: not connected")
	ErrAlreadyConnected = errors.New("rcon: already connected")

	// ErrIDCollision reports a request id already in flight. Ids are
	// drawn at random from a 31-bit space, so a live collision points at
	// a stuck reply, not bad luck.
	ErrIDCollision = errors.New("rcon: request id already in flight")
)
