// Package packet implements the length-prefixed framing spoken by
// stream-oriented RCON servers.
//
// Wire layout, every integer little-endian signed 32-bit:
//
//	length  int32    bytes remaining after this field (len(body) + 10)
//	id      int32    request correlation id, -1 reserved for the server
//	type    int32    packet type code
//	body    []byte   UTF-8 text
//	pad     2 bytes  mandatory zero terminators
//
// A packet is decodable only once length+4 bytes are buffered; anything
// shorter is an incomplete frame, not an error.
package packet

import (
	"encoding/binary"
	"strings"
)

// Packet type codes. TypeCommand and TypeAuthResponse share the wire
// value 2; direction tells them apart, never the value itself.
const (
	TypeResponseValue int32 = 0
	TypeCommand       int32 = 2
	TypeAuthResponse  int32 = 2
	TypeAuth          int32 = 3
)

// ServerID marks server-originated packets and failed authentication
// replies. Caller-chosen ids are non-negative and can never collide
// with it.
const ServerID int32 = -1

const (
	// headerLen covers the length, id, and type fields.
	headerLen = 12
	// wrapperLen is the overhead counted by the length field: id, type,
	// and the two terminator bytes.
	wrapperLen = 10
)

// Packet is one protocol message.
type Packet struct {
	ID   int32
	Type int32
	Body string
}

// Encode renders p in wire order. The length field is derived from the
// body; callers never supply it.
func Encode(p Packet) []byte {
	body := []byte(p.Body)
	buf := make([]byte, headerLen+len(body)+2)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(body)+wrapperLen))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[headerLen:], body)
	return buf
}

// StreamDecoder reassembles packets from an unbounded byte stream.
// Bytes that do not yet form a complete packet are carried until the
// next Feed. The zero value is ready to use.
type StreamDecoder struct {
	buf []byte
}

// Feed appends chunk to the carried bytes and returns every packet that
// is now complete, in stream order. A non-positive length field stops
// the scan for this delivery; frames too short to hold the id/type
// wrapper are skipped without being surfaced. A body's single trailing
// newline, when present, is stripped; a second one is kept.
func (d *StreamDecoder) Feed(chunk []byte) []Packet {
	d.buf = append(d.buf, chunk...)
	var pkts []Packet
	for len(d.buf) >= 4 {
		length := int32(binary.LittleEndian.Uint32(d.buf[0:4]))
		if length <= 0 {
			break
		}
		total := int(length) + 4
		if len(d.buf) < total {
			break
		}
		if length >= wrapperLen {
			pkts = append(pkts, Packet{
				ID:   int32(binary.LittleEndian.Uint32(d.buf[4:8])),
				Type: int32(binary.LittleEndian.Uint32(d.buf[8:12])),
				Body: strings.TrimSuffix(string(d.buf[headerLen:total-2]), "\n"),
			})
		}
		d.buf = d.buf[total:]
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return pkts
}

// Buffered reports how many bytes are carried awaiting completion.
func (d *StreamDecoder) Buffered() int {
	return len(d.buf)
}
