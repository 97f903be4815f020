package protocol

import (
	"encoding/binary"
)

// EncodeAuth builds the outbound AUTH frame (type 1):
// 0x03, userID:uint32_be, 0x00, authLen:uint8, auth:ascii[authLen], 0x0000:uint16_be, 0xB4.
func EncodeAuth(userID uint32, authorize string) []byte {
	payload := make([]byte, 0, 10+len(authorize))
	payload = append(payload, 0x03)
	var userIDBytes [4]byte
	binary.BigEndian.PutUint32(userIDBytes[:], userID)
	payload = append(payload, userIDBytes[:]...)
	payload = append(payload, 0x00)
	payload = append(payload, byte(len(authorize)))
	payload = append(payload, authorize...)
	payload = append(payload, 0x00, 0x00)
	payload = append(payload, 0xB4)
	return EncodeFrame(PacketAuth, payload)
}

// DecodeAuthResponse reports whether an inbound AUTH response payload
// signals success: its first two bytes are 0x0000.
func DecodeAuthResponse(payload []byte) (ok bool, err error) {
	if len(payload) < 2 {
		return false, ErrMalformedFrame
	}
	return payload[0] == 0x00 && payload[1] == 0x00, nil
}
