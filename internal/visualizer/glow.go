package visualizer

import (
	"fmt"
	"math"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Glow is the shadow applied around the capture box. Blue and Opacity are
// kept unclamped; Color clamps them.
type Glow struct {
	Spread  float64
	Opacity float64
	Blue    float64
	Active  bool
}

// GlowFor maps a mean frequency amplitude (0..255) to the active glow.
func GlowFor(avg float64) Glow {
	return Glow{
		Spread:  20 + avg/2,
		Opacity: 0.25 + avg/255,
		Blue:    80 + avg,
		Active:  true,
	}
}

// Resting is the glow shown whenever nothing is being recorded.
func Resting() Glow {
	return Glow{Spread: 32, Opacity: 0.3}
}

// Color is rgb(0, blue, 255) while active and black at rest.
func (g Glow) Color() RGB {
	if !g.Active {
		return RGB{}
	}
	return RGB{R: 0, G: clampByte(g.Blue), B: 255}
}

// Alpha clamps Opacity to [0, 1].
func (g Glow) Alpha() float64 {
	return math.Max(0, math.Min(1, g.Opacity))
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
