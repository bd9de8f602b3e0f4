package datagram

import (
	"bytes"
	"errors"
	"testing"
)

func prefixed(payload string) []byte {
	return append([]byte{0xff, 0xff, 0xff, 0xff}, payload...)
}

func TestChallengeRequestBytes(t *testing.T) {
	want := prefixed("challenge rcon\n")
	if got := ChallengeRequest(); !bytes.Equal(got, want) {
		t.Fatalf("challenge request = %v, want %v", got, want)
	}
}

func TestNoAuthAckBytes(t *testing.T) {
	want := append([]byte{0xff, 0xff, 0xff, 0xff}, 0x00)
	if got := NoAuthAck(); !bytes.Equal(got, want) {
		t.Fatalf("ack = %v, want %v", got, want)
	}
}

func TestCommandBytes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		token    string
		password string
		want     string
	}{
		{"token and password", "status", "ABC123", "secret", "rcon ABC123 secret status\n"},
		{"password only", "status", "", "secret", "rcon secret status\n"},
		{"bare", "status", "", "", "rcon status\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Command(tc.body, tc.token, tc.password)
			if !bytes.Equal(got, prefixed(tc.want)) {
				t.Fatalf("command = %q, want %q", got, prefixed(tc.want))
			}
		})
	}
}

func TestDecodeChallengeToken(t *testing.T) {
	msg, err := Decode(prefixed("challenge rcon ABC123\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindChallenge || msg.Token != "ABC123" {
		t.Fatalf("decoded %+v, want challenge token ABC123", msg)
	}
}

func TestDecodeChallengeTokenCRLF(t *testing.T) {
	// Some servers terminate the token line with CRLF.
	msg, err := Decode(prefixed("challenge rcon 987654\r\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindChallenge || msg.Token != "987654" {
		t.Fatalf("decoded %+v, want challenge token 987654", msg)
	}
}

func TestDecodeServerMessage(t *testing.T) {
	msg, err := Decode(prefixed("\x00Player joined the game\n\x00"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindServerMessage || msg.Body != "Player joined the game\n" {
		t.Fatalf("decoded %+v", msg)
	}
}

// Four fields is not a challenge line; it must fall through to the
// server message path.
func TestDecodeChallengeShapeMismatch(t *testing.T) {
	msg, err := Decode(prefixed("challenge rcon ABC 123"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindServerMessage || msg.Body != "hallenge rcon ABC 12" {
		t.Fatalf("decoded %+v", msg)
	}
}

func TestDecodeShortPayloads(t *testing.T) {
	for _, payload := range []string{"", "x"} {
		msg, err := Decode(prefixed(payload))
		if err != nil {
			t.Fatalf("payload %q: %v", payload, err)
		}
		if msg.Kind != KindServerMessage || msg.Body != "" {
			t.Fatalf("payload %q decoded as %+v, want empty server message", payload, msg)
		}
	}
}

func TestDecodeMissingMarker(t *testing.T) {
	for _, dgram := range [][]byte{nil, {0xff, 0xff}, []byte("rcon hello\n"), {0xff, 0xff, 0xff, 0xfe, 'x'}} {
		if _, err := Decode(dgram); !errors.Is(err, ErrMissingMarker) {
			t.Fatalf("datagram %v: err = %v, want ErrMissingMarker", dgram, err)
		}
	}
}
