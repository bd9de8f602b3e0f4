// Package datagram implements the challenge/response framing spoken by
// datagram-oriented RCON servers. Every datagram opens with a four byte
// 0xFF marker; the rest is line-oriented text.
package datagram

import (
	"bytes"
	"errors"
	"strings"
)

// ErrMissingMarker reports an inbound datagram without the 0xFFFFFFFF
// prefix. Such datagrams are surfaced as malformed, never dropped
// silently.
var ErrMissingMarker = errors.New("datagram: missing 0xffffffff marker")

var marker = []byte{0xff, 0xff, 0xff, 0xff}

// Kind classifies a decoded datagram.
type Kind uint8

const (
	// KindChallenge carries a server-issued challenge token.
	KindChallenge Kind = iota + 1
	// KindServerMessage carries free-form server output.
	KindServerMessage
)

// Message is one decoded inbound datagram. Token is set for challenge
// datagrams, Body for server messages.
type Message struct {
	Kind  Kind
	Token string
	Body  string
}

// ChallengeRequest renders the datagram that asks the server for a
// fresh challenge token.
func ChallengeRequest() []byte {
	var b bytes.Buffer
	b.Write(marker)
	b.WriteString("challenge rcon\n")
	return b.Bytes()
}

// NoAuthAck renders the single-byte acknowledgement sent when the
// challenge handshake is disabled.
func NoAuthAck() []byte {
	var b bytes.Buffer
	b.Write(marker)
	b.WriteByte(0x00)
	return b.Bytes()
}

// Command renders an outbound command datagram. Token and password are
// omitted when empty.
func Command(body, token, password string) []byte {
	var b bytes.Buffer
	b.Write(marker)
	b.WriteString("rcon ")
	if token != "" {
		b.WriteString(token)
		b.WriteByte(' ')
	}
	if password != "" {
		b.WriteString(password)
		b.WriteByte(' ')
	}
	b.WriteString(body)
	b.WriteByte('\n')
	return b.Bytes()
}

// Decode classifies one inbound datagram. A payload of exactly three
// space-separated fields opening with "challenge rcon" is a challenge
// token; anything else is a server message stripped of the single
// marker byte the server wraps around each side. Payloads shorter than
// the wrapping yield an empty message rather than underflowing.
func Decode(dgram []byte) (Message, error) {
	if len(dgram) < len(marker) || !bytes.Equal(dgram[:len(marker)], marker) {
		return Message{}, ErrMissingMarker
	}
	payload := string(dgram[len(marker):])

	if fields := strings.Split(payload, " "); len(fields) == 3 &&
		fields[0] == "challenge" && fields[1] == "rcon" {
		return Message{Kind: KindChallenge, Token: trimToken(fields[2])}, nil
	}

	if len(payload) < 2 {
		return Message{Kind: KindServerMessage}, nil
	}
	return Message{Kind: KindServerMessage, Body: payload[1 : len(payload)-1]}, nil
}

// trimToken drops the trailing control byte servers append to the token
// line, then any leftover whitespace.
func trimToken(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(s[:len(s)-1])
}
