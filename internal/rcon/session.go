package rcon

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brakken/rconctl/internal/protocol/datagram"
	"github.com/brakken/rconctl/internal/protocol/packet"
)

// session is the per-connection state machine. It exclusively owns the
// reassembly decoder and the pending table. Inbound traffic flows
// through a single reader goroutine; the mutex reconciles state reads
// from caller goroutines.
type session struct {
	client    *Client
	tr        Transport
	network   string
	challenge bool
	password  string
	log       zerolog.Logger

	pend *pendingTable
	dec  packet.StreamDecoder

	mu     sync.Mutex
	authed bool
	token  string
	authID int32
	onIdle func()

	closeOnce sync.Once
}

func newSession(c *Client, tr Transport) *session {
	return &session{
		client:    c,
		tr:        tr,
		network:   c.cfg.Network,
		challenge: !c.cfg.DisableChallenge,
		password:  c.cfg.Password,
		log:       c.log,
		pend:      newPendingTable(),
	}
}

// handshake transmits the credentials for the session's dialect: an
// AUTH packet for TCP, a challenge request for challenged UDP, or the
// ack datagram (authenticating synchronously) for challenge-free UDP.
func (s *session) handshake() error {
	switch {
	case s.network == NetworkTCP:
		s.mu.Lock()
		s.authID = requestID()
		id := s.authID
		s.mu.Unlock()

		wire := packet.Encode(packet.Packet{ID: id, Type: packet.TypeAuth, Body: s.password})
		if err := s.tr.Send(wire); err != nil {
			return err
		}
		s.log.Debug().Int32("id", id).Int("password_bytes", len(s.password)).Msg("auth request sent")
	case s.challenge:
		if err := s.tr.Send(datagram.ChallengeRequest()); err != nil {
			return err
		}
		s.log.Debug().Msg("challenge requested")
	default:
		if err := s.tr.Send(datagram.NoAuthAck()); err != nil {
			return err
		}
		s.mu.Lock()
		s.authed = true
		s.mu.Unlock()
		s.emit(Event{Kind: EventAuth})
	}
	return nil
}

func (s *session) readLoop() {
	for {
		chunk, err := s.tr.Recv()
		if err != nil {
			s.finish(err)
			return
		}
		if s.network == NetworkUDP {
			s.handleDatagram(chunk)
		} else {
			s.handleStream(chunk)
		}
	}
}

func (s *session) handleStream(chunk []byte) {
	for _, p := range s.dec.Feed(chunk) {
		s.handlePacket(p)
	}
}

// handlePacket classifies one decoded stream packet. The auth reply is
// matched structurally (type plus the stored auth id), never through
// the pending table, and a reply carrying the server id before
// authentication means the password was rejected. The collision between
// the command and auth-response type codes makes state the only safe
// discriminator here.
func (s *session) handlePacket(p packet.Packet) {
	s.mu.Lock()
	authed := s.authed
	authID := s.authID
	s.mu.Unlock()

	switch {
	case !authed && p.Type == packet.TypeAuthResponse && p.ID == authID:
		s.mu.Lock()
		s.authed = true
		s.mu.Unlock()
		s.log.Debug().Msg("authenticated")
		s.emit(Event{Kind: EventAuth})
	case !authed && p.ID == packet.ServerID:
		s.emit(Event{Kind: EventError, Err: ErrAuthFailed})
	case p.ID == packet.ServerID:
		s.emit(Event{Kind: EventServer, Body: p.Body})
	default:
		if s.pend.resolve(p.ID, p.Body) {
			s.log.Debug().Int32("id", p.ID).Int("bytes", len(p.Body)).Msg("command reply resolved")
		}
		s.emit(Event{Kind: EventResponse, Body: p.Body})
	}
}

// handleDatagram classifies one inbound datagram. Only the first
// challenge token flips the session to authenticated; later ones just
// refresh the stored token.
func (s *session) handleDatagram(dgram []byte) {
	msg, err := datagram.Decode(dgram)
	if err != nil {
		s.emit(Event{Kind: EventError, Err: fmt.Errorf("%w: %w", ErrMalformed, err)})
		return
	}

	switch msg.Kind {
	case datagram.KindChallenge:
		s.mu.Lock()
		s.token = msg.Token
		first := !s.authed
		s.authed = true
		s.mu.Unlock()
		if first {
			s.log.Debug().Msg("challenge token received")
			s.emit(Event{Kind: EventAuth})
		}
	default:
		s.emit(Event{Kind: EventResponse, Body: msg.Body})
	}
}

func (s *session) send(text string) (*Command, error) {
	if s.network == NetworkUDP {
		return s.sendDatagram(text)
	}
	return s.sendStream(text)
}

func (s *session) sendStream(text string) (*Command, error) {
	cmd := newCommand(requestID())
	if err := s.pend.register(cmd); err != nil {
		return nil, err
	}
	wire := packet.Encode(packet.Packet{ID: cmd.id, Type: packet.TypeCommand, Body: text})
	if err := s.tr.Send(wire); err != nil {
		s.pend.fail(cmd.id, err)
		return nil, err
	}
	s.log.Debug().Int32("id", cmd.id).Str("command", text).Msg("command sent")
	return cmd, nil
}

// sendDatagram refuses to write while a required challenge token is
// still outstanding; the datagram format cannot correlate replies, so
// the returned Command is already complete.
func (s *session) sendDatagram(text string) (*Command, error) {
	s.mu.Lock()
	authed := s.authed
	token := s.token
	s.mu.Unlock()

	if s.challenge && !authed {
		s.emit(Event{Kind: EventError, Err: ErrAwaitingChallenge})
		return nil, ErrAwaitingChallenge
	}
	if err := s.tr.Send(datagram.Command(text, token, s.password)); err != nil {
		return nil, err
	}
	s.log.Debug().Str("command", text).Msg("command sent")
	return completedCommand(), nil
}

// finish routes a terminal read error into the end path. Local closes
// and EOFs end quietly, idle expiry runs the armed callback, and
// anything else is passed through verbatim as an error notification
// first.
func (s *session) finish(err error) {
	switch {
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.EOF):
	case errors.Is(err, os.ErrDeadlineExceeded):
		s.close(true)
		return
	default:
		s.emit(Event{Kind: EventError, Err: err})
	}
	s.close(false)
}

// close tears the session down exactly once: transport closed,
// authentication reset, outstanding commands failed, and the end
// notification emitted last.
func (s *session) close(idle bool) {
	s.closeOnce.Do(func() {
		s.tr.Close()

		s.mu.Lock()
		s.authed = false
		onIdle := s.onIdle
		s.mu.Unlock()

		if n := s.pend.failAll(ErrConnectionClosed); n > 0 {
			s.log.Debug().Int("outstanding", n).Msg("failed outstanding commands on close")
		}
		s.client.sessionEnded(s)
		if idle && onIdle != nil {
			onIdle()
		}
		s.emit(Event{Kind: EventEnd})
	})
}

func (s *session) setIdle(d time.Duration, fn func()) {
	s.mu.Lock()
	s.onIdle = fn
	s.mu.Unlock()
	s.tr.SetIdleTimeout(d)
}

func (s *session) isAuthed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *session) pending() int {
	return s.pend.size()
}

func (s *session) emit(ev Event) {
	s.client.emit(ev)
}
