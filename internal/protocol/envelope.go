package protocol

import "encoding/binary"

// Subtype tags the inner body of a STATUS-family request or response.
type Subtype uint8

const (
	SubtypeGetStatusPaginated Subtype = 0x52
	SubtypeGetStatus          Subtype = 0xDB
	SubtypeSetStatus          Subtype = 0xD0
	SubtypeSetBrightness      Subtype = 0xD2
	SubtypeSetColorTemp       Subtype = 0xE2
	SubtypeSetState           Subtype = 0xF0
)

// envelopeHeaderLen is the fixed portion of a STATUS request envelope
// preceding the inner body: switchID(4) seq(2) 0x00 0x7E 0x00x4 0xF8
// subtype(1) inner_len(1) 0x00x3.
const envelopeHeaderLen = 18

// EncodeStatusRequest builds the STATUS (type 7) request envelope payload:
// switchID:uint32_be, seq:uint16_be, 0x00, 0x7E, 0x00·4, 0xF8, subtype,
// inner_len, 0x00·3, inner[inner_len].
func EncodeStatusRequest(switchID uint32, seq uint16, subtype Subtype, inner []byte) []byte {
	payload := make([]byte, envelopeHeaderLen+len(inner))
	binary.BigEndian.PutUint32(payload[0:4], switchID)
	binary.BigEndian.PutUint16(payload[4:6], seq)
	payload[6] = 0x00
	payload[7] = 0x7E
	// payload[8:12] already zero
	payload[12] = 0xF8
	payload[13] = byte(subtype)
	payload[14] = byte(len(inner))
	// payload[15:18] already zero
	copy(payload[18:], inner)
	return payload
}

// EncodeConnectedRequest builds the CONNECTED (type 10) probe payload:
// switchID:uint32_be, seq:uint16_be, 0x00.
func EncodeConnectedRequest(switchID uint32, seq uint16) []byte {
	payload := make([]byte, 7)
	binary.BigEndian.PutUint32(payload[0:4], switchID)
	binary.BigEndian.PutUint16(payload[4:6], seq)
	return payload
}

// StatusHeader is the common switchID/responseID prefix of every STATUS
// (type 7) payload, inbound or outbound.
type StatusHeader struct {
	SwitchID   uint32
	ResponseID uint16
}

// ParseStatusHeader reads the switchID (bytes 0..3) and responseID
// (bytes 4..5) common to every STATUS payload.
func ParseStatusHeader(payload []byte) (StatusHeader, error) {
	if len(payload) < 6 {
		return StatusHeader{}, ErrMalformedFrame
	}
	return StatusHeader{
		SwitchID:   binary.BigEndian.Uint32(payload[0:4]),
		ResponseID: binary.BigEndian.Uint16(payload[4:6]),
	}, nil
}

// EncodeStatusAck builds the 7-byte ack the core must emit for any
// unsolicited (isResponse=false) inbound STATUS packet: switchID,
// responseID, and a trailing zero byte.
func EncodeStatusAck(switchID uint32, responseID uint16) []byte {
	payload := make([]byte, 7)
	binary.BigEndian.PutUint32(payload[0:4], switchID)
	binary.BigEndian.PutUint16(payload[4:6], responseID)
	return payload
}
