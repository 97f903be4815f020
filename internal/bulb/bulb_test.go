package bulb

import (
	"bytes"
	"testing"

	"github.com/cyncbridge/core/internal/protocol"
	"github.com/stretchr/testify/require"
)

func seqCounter() func() uint16 {
	var n uint16
	return func() uint16 {
		n++
		return n
	}
}

func TestSetOnEmitsSetState(t *testing.T) {
	b := New(1, 1000, 5, 7, "Lamp", 1, seqCounter())
	req := b.SetOn(true)
	require.True(t, b.State.On)

	f, err := protocol.ReadFrame(bytes.NewReader(req))
	require.NoError(t, err)
	require.Equal(t, protocol.PacketStatus, f.Type)
	require.EqualValues(t, protocol.SubtypeSetState, f.Payload[13])
}

// A non-RGB-capable bulb never emits a non-white RGB triple.
func TestCapabilityGatingRejectsRGBOnWhiteOnlyBulb(t *testing.T) {
	b := New(1, 1000, 5, 1, "Lamp", 1, seqCounter()) // deviceType 1: brightness-only
	_, err := b.SetHue(240)
	require.ErrorIs(t, err, ErrNotCapable)
	require.Equal(t, [3]uint8{0, 0, 0}, b.State.RGB)

	_, err = b.SetSaturation(80)
	require.ErrorIs(t, err, ErrNotCapable)
	require.Equal(t, [3]uint8{0, 0, 0}, b.State.RGB)
}

func TestCapabilityGatingRejectsBrightnessWhenUnsupported(t *testing.T) {
	b := New(1, 1000, 5, 0, "Switch", 1, seqCounter()) // deviceType 0: no capabilities
	_, err := b.SetBrightness(50)
	require.ErrorIs(t, err, ErrNotCapable)
}

func TestSetHueOnRGBCapableBulb(t *testing.T) {
	b := New(1, 1000, 5, 7, "Lamp", 1, seqCounter())
	b.State.Brightness = 100
	_, err := b.SetHue(0)
	require.NoError(t, err)
	require.NotEqual(t, [3]uint8{0, 0, 0}, b.State.RGB)
}

// apply(s); apply(s) leaves state identical to apply(s).
func TestApplyIdempotent(t *testing.T) {
	b := New(1, 1000, 5, 7, "Lamp", 1, seqCounter())
	delta := protocol.DeviceStatusDelta{
		On: true, Brightness: 80, CyncTemp: 30, HasCyncTemp: true,
		RGB: [3]uint8{10, 20, 30}, HasRGB: true,
	}
	b.Apply(delta)
	once := b.State
	b.Apply(delta)
	require.Equal(t, once, b.State)
}

func TestApplyOverwritesLocalState(t *testing.T) {
	b := New(1, 1000, 5, 7, "Lamp", 1, seqCounter())
	b.Apply(protocol.DeviceStatusDelta{On: false, Brightness: 0})
	require.False(t, b.State.On)
	require.EqualValues(t, 0, b.State.Brightness)
}
