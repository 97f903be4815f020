// Package hostadapter defines the boundary between the core and the
// home-automation host: the REST-backed inventory/auth exchange and
// the accessory layer both live outside the core and are reached only
// through this interface.
package hostadapter

// BulbRecord is one device as reported by the host's REST inventory.
type BulbRecord struct {
	DeviceID    uint32
	SwitchID    uint32
	DeviceType  uint8
	DisplayName string
}

// Home groups the bulbs the host adapter imports from one REST home
// container.
type Home struct {
	HomeID uint32
	Bulbs  []BulbRecord
}

// StateUpdate carries every characteristic the bulb supports after an
// apply, whether or not its value changed; a nil pointer means the
// bulb does not expose that characteristic.
type StateUpdate struct {
	On         *bool
	Brightness *uint8
	ColorTemp  *int
	Hue        *float64
	Saturation *float64
}

// CapabilitiesUpdate is reported once per bulb on first import.
type CapabilitiesUpdate struct {
	OnOff      bool
	Brightness bool
	ColorTemp  bool
	RGB        bool
}

// IntentKind names a user-originated command forwarded from the host
// into the core.
type IntentKind string

const (
	IntentSetOn         IntentKind = "setOn"
	IntentSetBrightness IntentKind = "setBrightness"
	IntentSetColorTemp  IntentKind = "setColorTemp"
	IntentSetHue        IntentKind = "setHue"
	IntentSetSaturation IntentKind = "setSaturation"
)

// Intent carries one user command. Exactly one value field is
// meaningful per Kind.
type Intent struct {
	DeviceID   uint32
	Kind       IntentKind
	Bool       bool
	Brightness uint8
	ColorTemp  int
	Hue        float64
	Saturation float64
}

// HostAdapter is the capability set the core requires of the
// home-automation host. The core calls ImportInventory once at
// startup; NotifyState and ExposeCapabilities are
// called BY the core INTO the adapter as state changes; UserIntents
// returns the channel the adapter uses to forward intents FROM the
// host INTO the core.
type HostAdapter interface {
	ImportInventory() ([]Home, error)
	NotifyState(deviceID uint32, update StateUpdate)
	ExposeCapabilities(deviceID uint32, caps CapabilitiesUpdate)
	UserIntents() <-chan Intent
}
