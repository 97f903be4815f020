package bulb

// Capabilities describes which characteristics a deviceType exposes.
type Capabilities struct {
	Brightness bool
	ColorTemp  bool
	RGB        bool
}

var brightnessCapable = ranges(
	single(1), span(5, 11), span(13, 15), span(17, 37), single(48), single(49),
	single(55), single(56), span(80, 83), single(85), span(128, 154), single(156),
	span(158, 165),
)

var colorTempCapable = ranges(
	span(5, 8), single(10), single(11), single(14), single(15), span(19, 23),
	single(25), single(26), span(28, 35), single(80), single(82), single(83),
	single(85), span(129, 133), span(135, 147), single(153), single(154),
	single(156), span(158, 165),
)

var rgbCapable = ranges(
	span(6, 8), span(21, 23), span(30, 35), span(131, 133), span(137, 143),
	single(146), single(147), single(153), single(154), single(156), span(158, 165),
)

// CapabilitiesFor returns the capability set for a deviceType. A bulb
// exposes exactly the capabilities whose set contains its deviceType.
func CapabilitiesFor(deviceType uint8) Capabilities {
	return Capabilities{
		Brightness: brightnessCapable[deviceType],
		ColorTemp:  colorTempCapable[deviceType],
		RGB:        rgbCapable[deviceType],
	}
}

type rangePair struct{ lo, hi uint8 }

func single(v uint8) rangePair    { return rangePair{v, v} }
func span(lo, hi uint8) rangePair { return rangePair{lo, hi} }

func ranges(pairs ...rangePair) [256]bool {
	var set [256]bool
	for _, p := range pairs {
		for v := int(p.lo); v <= int(p.hi); v++ {
			set[v] = true
		}
	}
	return set
}
