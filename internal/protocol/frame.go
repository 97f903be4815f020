// Package protocol implements the Cync cloud's framed binary TCP protocol:
// outer packet framing, the STATUS/CONNECTED request envelope, subtype inner
// bodies, and inbound packet parsing. It is stateless — callers own the
// socket and sequence numbers.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PacketType identifies the outer frame's packet_type nibble.
type PacketType uint8

const (
	PacketAuth       PacketType = 1
	PacketSync       PacketType = 4
	PacketStatus     PacketType = 7
	PacketStatusSync PacketType = 8
	PacketConnected  PacketType = 10
	PacketPing       PacketType = 13
)

// versionNibble is the low nibble of the outer type byte. The server
// requires this exact value on every outbound frame.
const versionNibble = 0x03

// isResponseBit marks an inbound frame as a response rather than a
// server-initiated push.
const isResponseBit = 0x08

// headerLen is the outer frame header size: 1 type byte + 4-byte big-endian length.
const headerLen = 5

// Frame is a decoded outer packet: type, response flag, and raw payload.
type Frame struct {
	Type       PacketType
	IsResponse bool
	Payload    []byte
}

// EncodeFrame wraps payload in the outer [type_byte][length][payload] frame.
// The encoded type byte always carries the version nibble and never sets
// isResponseBit — the core only ever originates requests.
func EncodeFrame(t PacketType, payload []byte) []byte {
	out := make([]byte, headerLen+len(payload))
	out[0] = byte(t<<4) | versionNibble
	binary.BigEndian.PutUint32(out[1:5], uint32(len(payload)))
	copy(out[5:], payload)
	return out
}

// ReadFrame reads exactly one framed packet from r: a 5-byte header
// followed by length bytes of payload. Each call blocks until a full
// frame is available or the stream ends; reads of the header and the
// payload are each atomic.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	typeByte := hdr[0]
	length := binary.BigEndian.Uint32(hdr[1:5])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("reading payload of %d bytes: %w", length, err)
		}
	}

	return Frame{
		Type:       PacketType(typeByte >> 4),
		IsResponse: typeByte&isResponseBit != 0,
		Payload:    payload,
	}, nil
}
