// Package bridge wires Session, Dispatcher, DeviceRegistry, and the
// ReconciliationLoop into one running core. Inbound frames, probe
// ticks, user intents, and status snapshots are all processed on a
// single event loop, so bulb and registry state is mutated without
// locking.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cyncbridge/core/internal/config"
	"github.com/cyncbridge/core/internal/control"
	"github.com/cyncbridge/core/internal/dispatcher"
	"github.com/cyncbridge/core/internal/hostadapter"
	"github.com/cyncbridge/core/internal/reconcile"
	"github.com/cyncbridge/core/internal/registry"
	"github.com/cyncbridge/core/internal/session"
)

const defaultProbeInterval = 300 * time.Second

// Core is the assembled bridge: one cloud Session, its Dispatcher, the
// DeviceRegistry it updates, and the ReconciliationLoop that keeps
// reachability current.
type Core struct {
	session    *session.Session
	dispatcher *dispatcher.Dispatcher
	registry   *registry.DeviceRegistry
	reconcile  *reconcile.Loop
	host       hostadapter.HostAdapter
	logger     *slog.Logger

	probeInterval time.Duration
	statusReq     chan chan control.StatusResult

	cancel context.CancelFunc
	done   chan struct{}
}

// New assembles a Core from configuration and a HostAdapter
// implementation. Call Start to import inventory and begin running.
func New(cfg config.GlobalConfig, host hostadapter.HostAdapter, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reconnectFloor, err := parseDurationDefault(cfg.Timers.ReconnectFloor, time.Duration(0))
	if err != nil {
		return nil, fmt.Errorf("bridge: timers.reconnect_floor: %w", err)
	}
	pingInterval, err := parseDurationDefault(cfg.Timers.PingInterval, time.Duration(0))
	if err != nil {
		return nil, fmt.Errorf("bridge: timers.ping_interval: %w", err)
	}
	probeInterval, err := parseDurationDefault(cfg.Timers.ProbeInterval, time.Duration(0))
	if err != nil {
		return nil, fmt.Errorf("bridge: timers.probe_interval: %w", err)
	}
	if probeInterval == 0 {
		probeInterval = defaultProbeInterval
	}

	sessCfg := session.Config{
		UserID:         cfg.Cloud.UserID,
		Authorize:      cfg.Cloud.Authorize,
		ReconnectFloor: reconnectFloor,
		PingInterval:   pingInterval,
	}
	dial := session.DialTCP(cfg.Cloud.Host, cfg.Cloud.Port)
	sess := session.New(sessCfg, dial, logger)

	reg := registry.New(sess.NextSeq)
	loop := reconcile.New(reg, sess.Send, sess.NextSeq, logger)
	disp := dispatcher.New(sess.Send, reg, host, loop.OnConnected, logger)

	return &Core{
		session:       sess,
		dispatcher:    disp,
		registry:      reg,
		reconcile:     loop,
		host:          host,
		logger:        logger,
		probeInterval: probeInterval,
		statusReq:     make(chan chan control.StatusResult),
		done:          make(chan struct{}),
	}, nil
}

// Start imports the HostAdapter's inventory, exposes capabilities for
// every bulb, and launches the session plus the core's single event
// loop. It returns once inventory import succeeds; the rest runs in
// the background until Shutdown.
func (c *Core) Start(ctx context.Context) error {
	homes, err := c.host.ImportInventory()
	if err != nil {
		return fmt.Errorf("bridge: importing inventory: %w", err)
	}
	for _, home := range homes {
		records := make([]registry.BulbRecord, len(home.Bulbs))
		for i, rec := range home.Bulbs {
			records[i] = registry.BulbRecord{
				DeviceID:    rec.DeviceID,
				SwitchID:    rec.SwitchID,
				DeviceType:  rec.DeviceType,
				DisplayName: rec.DisplayName,
			}
		}
		deviceIDs, err := c.registry.ImportInventory(home.HomeID, records)
		if err != nil {
			return fmt.Errorf("bridge: importing home %d: %w", home.HomeID, err)
		}
		for _, id := range deviceIDs {
			b, ok := c.registry.FindByDevice(id)
			if !ok {
				continue
			}
			c.host.ExposeCapabilities(id, hostadapter.CapabilitiesUpdate{
				OnOff:      true,
				Brightness: b.Capabilities.Brightness,
				ColorTemp:  b.Capabilities.ColorTemp,
				RGB:        b.Capabilities.RGB,
			})
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.session.Run(runCtx)
	go c.runLoop(runCtx)

	go func() {
		<-runCtx.Done()
		c.session.Shutdown()
		close(c.done)
	}()

	c.logger.Info("bridge core started", "homes", len(homes))
	return nil
}

// runLoop is the core's single event loop. Every path that touches
// bulb or registry state — inbound frames, probe ticks, user intents,
// status snapshots — runs here, one at a time.
func (c *Core) runLoop(ctx context.Context) {
	ticker := time.NewTicker(c.probeInterval)
	defer ticker.Stop()

	c.reconcile.ProbeAll()

	inbound := c.session.Inbound()
	intents := c.host.UserIntents()
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-inbound:
			c.dispatcher.Handle(f)
		case <-ticker.C:
			c.reconcile.ProbeAll()
		case intent, ok := <-intents:
			if !ok {
				intents = nil
				continue
			}
			c.applyIntent(intent)
		case reply := <-c.statusReq:
			reply <- c.statusSnapshot()
		}
	}
}

// Shutdown stops the event loop and waits for the session to close its
// connection.
func (c *Core) Shutdown() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

// Status reports the session's connection state and every known
// bulb's last-applied state, for the control-plane status method. The
// snapshot is taken on the event loop so it never races an apply.
func (c *Core) Status() control.StatusResult {
	reply := make(chan control.StatusResult, 1)
	select {
	case c.statusReq <- reply:
		return <-reply
	case <-c.done:
		// Loop stopped; no writers remain.
		return c.statusSnapshot()
	}
}

func (c *Core) statusSnapshot() control.StatusResult {
	bulbs := c.registry.All()
	result := control.StatusResult{
		SessionState: c.session.State().String(),
		Bulbs:        make([]control.BulbStatus, 0, len(bulbs)),
	}
	for _, b := range bulbs {
		result.Bulbs = append(result.Bulbs, control.BulbStatus{
			DeviceID:    b.DeviceID,
			SwitchID:    b.SwitchID,
			DisplayName: b.DisplayName,
			Connected:   b.Connected,
			On:          b.State.On,
			Brightness:  b.State.Brightness,
		})
	}
	return result
}

// Reload applies the hot-reloadable subset of a new configuration —
// the authorize token and the two session timers — without restarting
// the connection. userID and host changes require a restart.
func (c *Core) Reload(cfg config.GlobalConfig) error {
	c.session.SetAuthorize(cfg.Cloud.Authorize)

	if reconnectFloor, err := parseDurationDefault(cfg.Timers.ReconnectFloor, 0); err != nil {
		return fmt.Errorf("bridge: reload timers.reconnect_floor: %w", err)
	} else if reconnectFloor > 0 {
		c.session.SetReconnectFloor(reconnectFloor)
	}

	if pingInterval, err := parseDurationDefault(cfg.Timers.PingInterval, 0); err != nil {
		return fmt.Errorf("bridge: reload timers.ping_interval: %w", err)
	} else if pingInterval > 0 {
		c.session.SetPingInterval(pingInterval)
	}

	c.logger.Info("bridge core reloaded")
	return nil
}

// applyIntent translates one HostAdapter-originated user intent into
// an outbound frame, applying capability gating at the Bulb: a
// rejected intent never reaches the wire. Called only from the event
// loop.
func (c *Core) applyIntent(intent hostadapter.Intent) {
	b, ok := c.registry.FindByDevice(intent.DeviceID)
	if !ok {
		c.logger.Warn("intent for unknown deviceID", "deviceID", intent.DeviceID)
		return
	}

	var frame []byte
	var err error
	switch intent.Kind {
	case hostadapter.IntentSetOn:
		frame = b.SetOn(intent.Bool)
	case hostadapter.IntentSetBrightness:
		frame, err = b.SetBrightness(intent.Brightness)
	case hostadapter.IntentSetColorTemp:
		frame, err = b.SetColorTemp(intent.ColorTemp)
	case hostadapter.IntentSetHue:
		frame, err = b.SetHue(intent.Hue)
	case hostadapter.IntentSetSaturation:
		frame, err = b.SetSaturation(intent.Saturation)
	default:
		c.logger.Warn("unknown intent kind", "kind", intent.Kind)
		return
	}

	if err != nil {
		c.logger.Warn("intent rejected", "deviceID", intent.DeviceID, "kind", intent.Kind, "err", err)
		return
	}
	c.session.Send(frame)
}

// parseDurationDefault parses a Go duration string, treating "" as
// "use the built-in default" (def, normally the zero value so
// session.New fills in its own).
func parseDurationDefault(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	return d, nil
}
