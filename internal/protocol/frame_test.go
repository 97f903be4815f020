package protocol

import (
	"bytes"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

// decode(encode(t, p)) == (t, p, isResponse=false) for every packet
// type the protocol defines.
func TestFrameRoundTrip(t *testing.T) {
	types := []PacketType{PacketAuth, PacketSync, PacketStatus, PacketStatusSync, PacketConnected, PacketPing}
	for _, pt := range types {
		f := func(p []byte) bool {
			encoded := EncodeFrame(pt, p)
			got, err := ReadFrame(bytes.NewReader(encoded))
			if err != nil {
				return false
			}
			return got.Type == pt && got.IsResponse == false && bytes.Equal(got.Payload, p)
		}
		require.NoError(t, quick.Check(f, nil), "packet type %d", pt)
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	encoded := EncodeFrame(PacketPing, nil)
	got, err := ReadFrame(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, PacketPing, got.Type)
	require.Empty(t, got.Payload)
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x13, 0x00}))
	require.Error(t, err)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	encoded := EncodeFrame(PacketAuth, []byte{1, 2, 3, 4})
	_, err := ReadFrame(bytes.NewReader(encoded[:len(encoded)-2]))
	require.Error(t, err)
}

// Exact login request bytes for userID=0x12345678, authorize="abcdef".
func TestEncodeAuthExactBytes(t *testing.T) {
	got := EncodeAuth(0x12345678, "abcdef")
	want := []byte{
		0x13, 0x00, 0x00, 0x00, 0x10,
		0x03, 0x12, 0x34, 0x56, 0x78, 0x00, 0x06,
		0x61, 0x62, 0x63, 0x64, 0x65, 0x66,
		0x00, 0x00, 0xB4,
	}
	require.Equal(t, want, got)
}

func TestDecodeAuthResponse(t *testing.T) {
	ok, err := DecodeAuthResponse([]byte{0x00, 0x00})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = DecodeAuthResponse([]byte{0x00, 0x01})
	require.NoError(t, err)
	require.False(t, ok)

	_, err = DecodeAuthResponse([]byte{0x00})
	require.ErrorIs(t, err, ErrMalformedFrame)
}
