package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func paginatedRecord(meshID uint16, on bool, brightness, cyncTemp, r, g, b uint8) []byte {
	rec := make([]byte, paginatedRecordLen)
	rec[0] = byte(meshID >> 8)
	rec[1] = byte(meshID)
	if on {
		rec[8] = 1
		rec[12] = brightness
	}
	rec[16] = cyncTemp
	rec[20] = r
	rec[21] = g
	rec[22] = b
	return rec
}

// An inbound STATUS of length 70 carries two 24-byte records at
// offset 22.
func TestParseGetStatusPaginatedTwoRecords(t *testing.T) {
	payload := make([]byte, paginatedRecordStart)
	payload = append(payload, paginatedRecord(5, true, 80, 30, 10, 20, 30)...)
	payload = append(payload, paginatedRecord(6, false, 0, 0, 0, 0, 0)...)
	require.Len(t, payload, 70)

	deltas := ParseGetStatusPaginated(payload)
	require.Len(t, deltas, 2)

	require.EqualValues(t, 5, deltas[0].MeshID)
	require.True(t, deltas[0].On)
	require.EqualValues(t, 80, deltas[0].Brightness)
	require.EqualValues(t, 30, deltas[0].CyncTemp)
	require.Equal(t, [3]uint8{10, 20, 30}, deltas[0].RGB)

	require.EqualValues(t, 6, deltas[1].MeshID)
	require.False(t, deltas[1].On)
	require.EqualValues(t, 0, deltas[1].Brightness)
}

func TestParseGetStatusPaginatedDropsShortTrailingRecord(t *testing.T) {
	payload := make([]byte, paginatedRecordStart)
	payload = append(payload, paginatedRecord(5, true, 80, 30, 10, 20, 30)...)
	payload = append(payload, 0x00, 0x01) // too short for another record

	deltas := ParseGetStatusPaginated(payload)
	require.Len(t, deltas, 1)
}

func TestParseSync(t *testing.T) {
	payload := make([]byte, 7)
	rec := make([]byte, syncRecordLen)
	rec[3] = 5 // meshID
	rec[4] = 1 // on
	rec[5] = 42
	rec[6] = 15
	payload = append(payload, rec...)

	deltas := ParseSync(payload)
	require.Len(t, deltas, 1)
	require.EqualValues(t, 5, deltas[0].MeshID)
	require.True(t, deltas[0].On)
	require.EqualValues(t, 42, deltas[0].Brightness)
	require.EqualValues(t, 15, deltas[0].CyncTemp)
}

func TestParseStatusSync(t *testing.T) {
	payload := make([]byte, 33)
	payload[21] = 0x00
	payload[22] = 0x07 // meshID = 7
	payload[27] = 1    // on
	payload[28] = 64   // brightness

	delta, err := ParseStatusSync(payload)
	require.NoError(t, err)
	require.EqualValues(t, 7, delta.MeshID)
	require.True(t, delta.On)
	require.EqualValues(t, 64, delta.Brightness)

	_, err = ParseStatusSync(payload[:32])
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestParseGetStatus(t *testing.T) {
	payload := make([]byte, 29)
	payload[22] = 0x09 // meshID = 9
	payload[27] = 1
	payload[28] = 33

	delta, err := ParseGetStatus(payload)
	require.NoError(t, err)
	require.EqualValues(t, 9, delta.MeshID)
	require.True(t, delta.On)
	require.EqualValues(t, 33, delta.Brightness)
}

// An inbound CONNECTED for switchID=42 reports reachability; the
// resync request carries the literal paginated inner.
func TestParseConnectedAndResyncBody(t *testing.T) {
	payload := make([]byte, 4)
	payload[3] = 42
	switchID, err := ParseConnected(payload)
	require.NoError(t, err)
	require.EqualValues(t, 42, switchID)

	resync := EncodeStatusRequest(switchID, 1, SubtypeGetStatusPaginated, GetStatusPaginatedInner())
	require.Equal(t, []byte{0xFF, 0xFF, 0x00, 0x00, 0x56, 0x7E}, resync[18:])
}

func TestEncodeStatusAck(t *testing.T) {
	ack := EncodeStatusAck(1000, 7)
	require.Len(t, ack, 7)
	require.EqualValues(t, 1000, uint32(ack[0])<<24|uint32(ack[1])<<16|uint32(ack[2])<<8|uint32(ack[3]))
	require.EqualValues(t, 7, uint16(ack[4])<<8|uint16(ack[5]))
}

func TestStatusSubtypeTooShort(t *testing.T) {
	_, ok := StatusSubtype(make([]byte, 24))
	require.False(t, ok)

	payload := make([]byte, 25)
	payload[statusSubtypeOffset] = byte(SubtypeGetStatus)
	st, ok := StatusSubtype(payload)
	require.True(t, ok)
	require.Equal(t, SubtypeGetStatus, st)
}
