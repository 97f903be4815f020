package bulb

import "math"

// ViewColorTemp converts the wire-space cyncColorTemp (0=warm..100=cool)
// into the host-facing mired-like range 140..500.
func ViewColorTemp(cyncColorTemp uint8) int {
	return int(math.Round(float64(100-int(cyncColorTemp))*360/100)) + 140
}

// WireColorTemp is the inverse of ViewColorTemp: host mired value back
// to wire-space cyncColorTemp, clamped to the 0..100 wire range.
func WireColorTemp(colorTemp int) uint8 {
	v := 100 - int(math.Round(float64(colorTemp-140)*100/360))
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return uint8(v)
}

// HSVToRGB converts hue (0..360 degrees), saturation (0..100), and
// value/brightness (0..100) into an 8-bit RGB triple.
func HSVToRGB(hue, saturation, value float64) (r, g, b uint8) {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	s := saturation / 100
	v := value / 100

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var rp, gp, bp float64
	switch {
	case h < 60:
		rp, gp, bp = c, x, 0
	case h < 120:
		rp, gp, bp = x, c, 0
	case h < 180:
		rp, gp, bp = 0, c, x
	case h < 240:
		rp, gp, bp = 0, x, c
	case h < 300:
		rp, gp, bp = x, 0, c
	default:
		rp, gp, bp = c, 0, x
	}

	return clampByteF(round255(rp + m)), clampByteF(round255(gp + m)), clampByteF(round255(bp + m))
}

// RGBToHS converts an RGB triple into hue (0..360) and saturation
// (0..100), dropping value — the caller supplies brightness separately
// as V, matching the Bulb model where brightness is tracked independent
// of the RGB fields.
func RGBToHS(r, g, b uint8) (hue, saturation float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	if delta == 0 {
		return 0, 0
	}

	switch max {
	case rf:
		hue = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		hue = 60 * ((bf-rf)/delta + 2)
	default:
		hue = 60 * ((rf-gf)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	if max == 0 {
		saturation = 0
	} else {
		saturation = (delta / max) * 100
	}
	return hue, saturation
}

func round255(v float64) float64 {
	return math.Round(v * 255)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampByteF(v float64) uint8 {
	return clampByte(int(math.Round(v)))
}
