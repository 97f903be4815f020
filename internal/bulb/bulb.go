package bulb

import (
	"errors"
	"log/slog"

	"github.com/cyncbridge/core/internal/protocol"
)

// ErrNotCapable is returned when a setter targets a characteristic the
// bulb's deviceType does not expose. The bulb rejects the intent
// locally and never emits a SET request.
var ErrNotCapable = errors.New("bulb: characteristic not supported by this deviceType")

// State is a bulb's current reported/desired values.
type State struct {
	On            bool
	Brightness    uint8 // 0..100
	CyncColorTemp uint8 // wire space, 0..100
	RGB           [3]uint8
}

// Bulb is a single Cync device: identity, capabilities, and state.
// All mutation happens on the caller's single event loop; Bulb itself
// holds no locks.
type Bulb struct {
	DeviceID     uint32
	SwitchID     uint32
	MeshID       uint16
	DeviceType   uint8
	DisplayName  string
	HomeID       uint32
	Capabilities Capabilities

	Connected bool
	State     State

	// seq is handed to the caller for the next outbound frame; Bulb
	// does not write to the socket itself.
	nextSeq func() uint16
}

// New constructs a Bulb for one inventory record. nextSeq supplies the
// session's monotonic sequence number generator for outbound frames.
func New(deviceID, switchID uint32, meshID uint16, deviceType uint8, displayName string, homeID uint32, nextSeq func() uint16) *Bulb {
	return &Bulb{
		DeviceID:     deviceID,
		SwitchID:     switchID,
		MeshID:       meshID,
		DeviceType:   deviceType,
		DisplayName:  displayName,
		HomeID:       homeID,
		Capabilities: CapabilitiesFor(deviceType),
		nextSeq:      nextSeq,
	}
}

// ViewColorTemp returns the bulb's color temperature in host mired space.
func (b *Bulb) ViewColorTemp() int {
	return ViewColorTemp(b.State.CyncColorTemp)
}

// HueSaturation derives hue/saturation from the bulb's current RGB.
// Brightness is not read here; it serves as V only when hue or
// saturation is converted back to RGB.
func (b *Bulb) HueSaturation() (hue, saturation float64) {
	return RGBToHS(b.State.RGB[0], b.State.RGB[1], b.State.RGB[2])
}

// setState applies a full local state change and returns the framed
// SET_STATE request the caller must send. Every setter funnels through
// here so a single outbound packet always carries the complete state.
func (b *Bulb) setState() []byte {
	s := b.State
	inner := protocol.SetStateInner(b.MeshID, s.On, s.Brightness, s.CyncColorTemp, s.RGB[0], s.RGB[1], s.RGB[2])
	envelope := protocol.EncodeStatusRequest(b.SwitchID, b.nextSeq(), protocol.SubtypeSetState, inner)
	return protocol.EncodeFrame(protocol.PacketStatus, envelope)
}

// SetOn sets on/off state and returns the outbound SET_STATE request.
func (b *Bulb) SetOn(on bool) []byte {
	b.State.On = on
	return b.setState()
}

// SetBrightness sets brightness (0..100) if the bulb supports it.
func (b *Bulb) SetBrightness(brightness uint8) ([]byte, error) {
	if !b.Capabilities.Brightness {
		return nil, ErrNotCapable
	}
	b.State.Brightness = brightness
	return b.setState(), nil
}

// SetColorTemp sets color temperature from host mired space if the
// bulb supports it.
func (b *Bulb) SetColorTemp(viewColorTemp int) ([]byte, error) {
	if !b.Capabilities.ColorTemp {
		return nil, ErrNotCapable
	}
	b.State.CyncColorTemp = WireColorTemp(viewColorTemp)
	return b.setState(), nil
}

// SetHue sets hue (0..360), re-deriving RGB from the current
// saturation and brightness, if the bulb is RGB-capable.
func (b *Bulb) SetHue(hue float64) ([]byte, error) {
	if !b.Capabilities.RGB {
		return nil, ErrNotCapable
	}
	_, saturation := b.HueSaturation()
	b.applyHS(hue, saturation)
	return b.setState(), nil
}

// SetSaturation sets saturation (0..100), re-deriving RGB from the
// current hue and brightness, if the bulb is RGB-capable.
func (b *Bulb) SetSaturation(saturation float64) ([]byte, error) {
	if !b.Capabilities.RGB {
		return nil, ErrNotCapable
	}
	hue, _ := b.HueSaturation()
	b.applyHS(hue, saturation)
	return b.setState(), nil
}

func (b *Bulb) applyHS(hue, saturation float64) {
	r, g, bl := HSVToRGB(hue, saturation, float64(b.State.Brightness))
	b.State.RGB = [3]uint8{r, g, bl}
}

// Apply overwrites local state from an inbound status delta. It is
// idempotent: applying the same delta twice leaves state identical to
// applying it once. User-originated changes are never suppressed
// against cloud echoes — the cloud's state is authoritative.
func (b *Bulb) Apply(delta protocol.DeviceStatusDelta) {
	b.State.On = delta.On
	b.State.Brightness = delta.Brightness
	if delta.HasCyncTemp {
		b.State.CyncColorTemp = delta.CyncTemp
	}
	if delta.HasRGB {
		b.State.RGB = delta.RGB
	}
}

// LogValue lets slog render a Bulb compactly in structured log lines.
func (b *Bulb) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("deviceID", uint64(b.DeviceID)),
		slog.Uint64("switchID", uint64(b.SwitchID)),
		slog.Uint64("meshID", uint64(b.MeshID)),
		slog.Bool("connected", b.Connected),
		slog.Bool("on", b.State.On),
	)
}
