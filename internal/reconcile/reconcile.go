// Package reconcile implements the per-bulb reachability probe and
// on-reachable resync: on each probe pass every bulb is marked
// unreachable and probed with a CONNECTED request; a positive response
// flips it back to reachable and triggers an immediate full status
// resync for its switch.
package reconcile

import (
	"log/slog"

	"github.com/cyncbridge/core/internal/protocol"
	"github.com/cyncbridge/core/internal/registry"
)

// Loop owns the reachability probe logic. It runs no goroutine of its
// own: the core's event loop calls ProbeAll on its probe ticker and
// wires OnConnected into the Dispatcher as its CONNECTED callback, so
// every bulb mutation stays on that loop.
type Loop struct {
	registry *registry.DeviceRegistry
	send     func([]byte)
	nextSeq  func() uint16
	logger   *slog.Logger
}

// New constructs a Loop.
func New(reg *registry.DeviceRegistry, send func([]byte), nextSeq func() uint16, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{registry: reg, send: send, nextSeq: nextSeq, logger: logger}
}

// ProbeAll marks every bulb unreachable and sends it a CONNECTED
// probe. Reachability is restored per bulb as responses arrive via
// OnConnected.
func (l *Loop) ProbeAll() {
	for _, b := range l.registry.All() {
		b.Connected = false
		payload := protocol.EncodeConnectedRequest(b.SwitchID, l.nextSeq())
		l.send(protocol.EncodeFrame(protocol.PacketConnected, payload))
	}
}

// OnConnected is the Dispatcher's CONNECTED callback: it marks the
// bulb reachable and immediately emits a GET_STATUS_PAGINATED resync
// for its switch.
func (l *Loop) OnConnected(switchID uint32) {
	b, ok := l.registry.FindBySwitch(switchID)
	if !ok {
		l.logger.Debug("CONNECTED for unknown switchID", "switchID", switchID)
		return
	}
	b.Connected = true

	inner := protocol.GetStatusPaginatedInner()
	envelope := protocol.EncodeStatusRequest(switchID, l.nextSeq(), protocol.SubtypeGetStatusPaginated, inner)
	l.send(protocol.EncodeFrame(protocol.PacketStatus, envelope))
}
