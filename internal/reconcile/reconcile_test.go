package reconcile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyncbridge/core/internal/protocol"
	"github.com/cyncbridge/core/internal/registry"
)

func seqCounter() func() uint16 {
	var n uint16
	return func() uint16 { n++; return n }
}

func TestProbeAllMarksDisconnectedAndSendsConnectedRequest(t *testing.T) {
	reg := registry.New(seqCounter())
	_, err := reg.ImportInventory(7, []registry.BulbRecord{{DeviceID: 1, SwitchID: 1000}})
	require.NoError(t, err)

	b, _ := reg.FindBySwitch(1000)
	b.Connected = true

	var sent [][]byte
	l := New(reg, func(f []byte) { sent = append(sent, f) }, seqCounter(), nil)
	l.ProbeAll()

	require.False(t, b.Connected)
	require.Len(t, sent, 1)

	f, err := protocol.ReadFrame(bytes.NewReader(sent[0]))
	require.NoError(t, err)
	require.Equal(t, protocol.PacketConnected, f.Type)
}

// An inbound CONNECTED for switchID=42 marks the bulb reachable and
// emits the literal paginated resync body.
func TestOnConnectedMarksReachableAndResyncs(t *testing.T) {
	reg := registry.New(seqCounter())
	_, err := reg.ImportInventory(7, []registry.BulbRecord{{DeviceID: 1, SwitchID: 42}})
	require.NoError(t, err)

	var sent [][]byte
	l := New(reg, func(f []byte) { sent = append(sent, f) }, seqCounter(), nil)
	l.OnConnected(42)

	b, _ := reg.FindBySwitch(42)
	require.True(t, b.Connected)
	require.Len(t, sent, 1)

	f, err := protocol.ReadFrame(bytes.NewReader(sent[0]))
	require.NoError(t, err)
	require.Equal(t, protocol.PacketStatus, f.Type)
	require.Equal(t, []byte{0xFF, 0xFF, 0x00, 0x00, 0x56, 0x7E}, f.Payload[18:])
}

func TestOnConnectedUnknownSwitchIsNoop(t *testing.T) {
	reg := registry.New(seqCounter())
	var sent [][]byte
	l := New(reg, func(f []byte) { sent = append(sent, f) }, seqCounter(), nil)
	l.OnConnected(999)
	require.Empty(t, sent)
}
