// Package gradient maps signed water-storage change values onto a diverging
// red-white-blue color scale. Losses render red, gains blue, and values near
// zero fade to white. The same mapping is used by the tile baker and the
// legend so baked imagery and legend swatches stay in agreement.
package gradient

import (
	"fmt"
	"image/color"
	"math"
)

// scale is the fixed amplitude of the exponential falloff. With channel
// values capped at 255, the secondary channel starts bleeding in once the
// curve drops below 255, which keeps small changes near zero visually
// distinguishable while extreme values compress toward full saturation.
const scale = 500.0

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as "#rrggbb" with zero-padded lowercase hex digits.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NRGBA returns the color as image/color.NRGBA with the given alpha.
func (c RGB) NRGBA(alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// Diverging is a red-white-blue diverging scale with a neutral midpoint at
// zero. MaxMagnitude is the expected extent of the data in both directions;
// values beyond it saturate rather than fail.
type Diverging struct {
	MaxMagnitude float64
}

// At maps a signed value to its color. Negative values (loss) run from white
// through orange to red, non-negative values (gain) from white through cyan
// to blue. Zero routes through the gain branch so the midpoint color is a
// single deterministic value. A zero or negative MaxMagnitude degrades to
// full saturation on both sides.
func (d Diverging) At(value float64) RGB {
	half := d.MaxMagnitude / 2

	if value < 0 {
		loss := 0.0
		if half > 0 {
			loss = scale * math.Exp(value/half)
		}
		if loss > 255 {
			return RGB{R: 255, G: 255, B: clampChannel(loss - 255)}
		}
		return RGB{R: 255, G: clampChannel(loss), B: 0}
	}

	gain := 0.0
	if half > 0 {
		gain = scale * math.Exp(-value/half)
	}
	if gain > 255 {
		return RGB{R: clampChannel(gain - 255), G: 255, B: 255}
	}
	return RGB{G: clampChannel(gain), B: 255}
}

// Hex is shorthand for At(value).Hex().
func (d Diverging) Hex(value float64) string {
	return d.At(value).Hex()
}

// clampChannel rounds a channel value to the nearest integer and clamps it
// into [0, 255].
func clampChannel(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
