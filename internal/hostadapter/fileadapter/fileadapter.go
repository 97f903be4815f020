// Package fileadapter is a HostAdapter backed by a YAML inventory
// fixture, standing in for the REST auth/inventory exchange that is
// out of scope for the core. It gives cmd/cyncbridged a runnable
// adapter without a real Cync account.
package fileadapter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/cyncbridge/core/internal/hostadapter"
)

// fixture mirrors the YAML shape; mapstructure decodes the
// interface{} tree yaml.v3 produces into it.
type fixture struct {
	Homes []struct {
		ID    uint32 `mapstructure:"id"`
		Bulbs []struct {
			DeviceID    uint32 `mapstructure:"device_id"`
			SwitchID    uint32 `mapstructure:"switch_id"`
			DeviceType  uint8  `mapstructure:"device_type"`
			DisplayName string `mapstructure:"display_name"`
		} `mapstructure:"bulbs"`
	} `mapstructure:"homes"`
}

// Adapter reads homes/bulbs from a YAML file each time ImportInventory
// is called and logs state changes instead of forwarding them to a
// real accessory layer.
type Adapter struct {
	path    string
	logger  *slog.Logger
	intents chan hostadapter.Intent
}

// New constructs a file-backed adapter reading from path.
func New(path string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		path:    path,
		logger:  logger,
		intents: make(chan hostadapter.Intent),
	}
}

// ImportInventory reads and decodes the YAML fixture into Homes.
func (a *Adapter) ImportInventory() ([]hostadapter.Home, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("fileadapter: reading %s: %w", a.path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fileadapter: parsing %s: %w", a.path, err)
	}

	var fx fixture
	if err := mapstructure.Decode(raw, &fx); err != nil {
		return nil, fmt.Errorf("fileadapter: decoding %s: %w", a.path, err)
	}

	homes := make([]hostadapter.Home, 0, len(fx.Homes))
	for _, h := range fx.Homes {
		home := hostadapter.Home{HomeID: h.ID}
		for _, b := range h.Bulbs {
			home.Bulbs = append(home.Bulbs, hostadapter.BulbRecord{
				DeviceID:    b.DeviceID,
				SwitchID:    b.SwitchID,
				DeviceType:  b.DeviceType,
				DisplayName: b.DisplayName,
			})
		}
		homes = append(homes, home)
	}
	return homes, nil
}

// NotifyState logs the on, brightness and color-temperature fields of
// the update; hue and saturation are not logged. A real host adapter
// would push these into its accessory layer.
func (a *Adapter) NotifyState(deviceID uint32, update hostadapter.StateUpdate) {
	attrs := []any{slog.Uint64("deviceID", uint64(deviceID))}
	if update.On != nil {
		attrs = append(attrs, slog.Bool("on", *update.On))
	}
	if update.Brightness != nil {
		attrs = append(attrs, slog.Int("brightness", int(*update.Brightness)))
	}
	if update.ColorTemp != nil {
		attrs = append(attrs, slog.Int("colorTemp", *update.ColorTemp))
	}
	a.logger.Info("state notified", attrs...)
}

// ExposeCapabilities logs the capability set discovered on first import.
func (a *Adapter) ExposeCapabilities(deviceID uint32, caps hostadapter.CapabilitiesUpdate) {
	a.logger.Info("capabilities exposed",
		slog.Uint64("deviceID", uint64(deviceID)),
		slog.Bool("brightness", caps.Brightness),
		slog.Bool("colorTemp", caps.ColorTemp),
		slog.Bool("rgb", caps.RGB),
	)
}

// UserIntents returns the channel the core reads intents from. Inject
// is the only writer to it.
func (a *Adapter) UserIntents() <-chan hostadapter.Intent {
	return a.intents
}

// Inject delivers a user intent as if it came from the host's
// accessory layer, for local testing without a real host integration.
func (a *Adapter) Inject(intent hostadapter.Intent) {
	a.intents <- intent
}
