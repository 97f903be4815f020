// Package dispatcher routes decoded inbound frames from a Session to
// the DeviceRegistry and HostAdapter, synthesizing STATUS acks for
// server-initiated packets.
package dispatcher

import (
	"log/slog"

	"github.com/cyncbridge/core/internal/bulb"
	"github.com/cyncbridge/core/internal/hostadapter"
	"github.com/cyncbridge/core/internal/protocol"
	"github.com/cyncbridge/core/internal/registry"
)

// Dispatcher routes one decoded inbound frame at a time by packet
// type, then by STATUS subtype. It owns no goroutine: Handle is called
// from the core's single event loop, which is also where every Bulb
// mutation happens.
type Dispatcher struct {
	send        func([]byte)
	registry    *registry.DeviceRegistry
	host        hostadapter.HostAdapter
	onConnected func(switchID uint32)
	logger      *slog.Logger
}

// New constructs a Dispatcher. send enqueues a frame on the owning
// Session; onConnected is invoked for every inbound CONNECTED report,
// letting the ReconciliationLoop mark reachability and resync.
func New(send func([]byte), reg *registry.DeviceRegistry, host hostadapter.HostAdapter, onConnected func(switchID uint32), logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{send: send, registry: reg, host: host, onConnected: onConnected, logger: logger}
}

// Handle dispatches one inbound frame. Callers invoke it strictly in
// the order frames arrive, matching on-wire order. Unknown packet
// types are dropped silently.
func (d *Dispatcher) Handle(f protocol.Frame) {
	switch f.Type {
	case protocol.PacketStatus:
		d.handleStatus(f)
	case protocol.PacketSync:
		d.handleSync(f)
	case protocol.PacketStatusSync:
		d.handleStatusSync(f)
	case protocol.PacketConnected:
		d.handleConnected(f)
	default:
		// AUTH is consumed by Session's handshake; PING carries no
		// inbound meaning; anything else is an unknown type, dropped
		// silently.
	}
}

func (d *Dispatcher) handleStatus(f protocol.Frame) {
	hdr, err := protocol.ParseStatusHeader(f.Payload)
	if err != nil {
		d.logger.Warn("malformed STATUS frame", "err", err)
		return
	}

	if !f.IsResponse {
		// Enqueued before any subtype handler emission below.
		ack := protocol.EncodeStatusAck(hdr.SwitchID, hdr.ResponseID)
		d.send(protocol.EncodeFrame(protocol.PacketStatus, ack))
	}

	subtype, ok := protocol.StatusSubtype(f.Payload)
	if !ok {
		return
	}

	switch subtype {
	case protocol.SubtypeGetStatus:
		delta, err := protocol.ParseGetStatus(f.Payload)
		if err != nil {
			d.logger.Warn("malformed GET_STATUS record", "err", err)
			return
		}
		d.applyDelta(hdr.SwitchID, delta)
	case protocol.SubtypeGetStatusPaginated:
		d.applyDeltas(hdr.SwitchID, protocol.ParseGetStatusPaginated(f.Payload))
	default:
		// Outbound-only subtypes never arrive inbound; drop.
	}
}

func (d *Dispatcher) handleSync(f protocol.Frame) {
	hdr, err := protocol.ParseStatusHeader(f.Payload)
	if err != nil {
		d.logger.Warn("malformed SYNC frame", "err", err)
		return
	}
	d.applyDeltas(hdr.SwitchID, protocol.ParseSync(f.Payload))
}

func (d *Dispatcher) handleStatusSync(f protocol.Frame) {
	hdr, err := protocol.ParseStatusHeader(f.Payload)
	if err != nil {
		d.logger.Warn("malformed STATUS_SYNC frame", "err", err)
		return
	}
	delta, err := protocol.ParseStatusSync(f.Payload)
	if err != nil {
		d.logger.Warn("malformed STATUS_SYNC frame", "err", err)
		return
	}
	d.applyDelta(hdr.SwitchID, delta)
}

func (d *Dispatcher) handleConnected(f protocol.Frame) {
	switchID, err := protocol.ParseConnected(f.Payload)
	if err != nil {
		d.logger.Warn("malformed CONNECTED frame", "err", err)
		return
	}
	if d.onConnected != nil {
		d.onConnected(switchID)
	}
}

func (d *Dispatcher) applyDeltas(switchID uint32, deltas []protocol.DeviceStatusDelta) {
	for _, delta := range deltas {
		d.applyDelta(switchID, delta)
	}
}

// applyDelta resolves the target bulb by meshID, with the packet's
// switchID disambiguating cross-home meshID collisions.
func (d *Dispatcher) applyDelta(switchID uint32, delta protocol.DeviceStatusDelta) {
	b, ok := d.registry.FindByMeshForSwitch(delta.MeshID, switchID)
	if !ok {
		d.logger.Debug("status for unknown meshID", "meshID", delta.MeshID, "switchID", switchID)
		return
	}
	b.Apply(delta)
	d.notifyHost(b)
}

// notifyHost calls the HostAdapter for every capability the bulb
// supports. A panicking adapter is caught and logged rather than
// interrupting the dispatch loop.
func (d *Dispatcher) notifyHost(b *bulb.Bulb) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("host adapter notify panicked", "recover", r, "deviceID", b.DeviceID)
		}
	}()

	on := b.State.On
	update := hostadapter.StateUpdate{On: &on}
	if b.Capabilities.Brightness {
		brightness := b.State.Brightness
		update.Brightness = &brightness
	}
	if b.Capabilities.ColorTemp {
		ct := b.ViewColorTemp()
		update.ColorTemp = &ct
	}
	if b.Capabilities.RGB {
		hue, sat := b.HueSaturation()
		update.Hue = &hue
		update.Saturation = &sat
	}
	d.host.NotifyState(b.DeviceID, update)
}
