package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/milk9111/listeningjourney/common"
)

// Silhouette returns the height of a layer's outline at u, as a fraction of
// the layer height. u is measured in viewport widths and every shape repeats
// with period 1, so neighbouring tiles join without a seam.
func Silhouette(shape string, u float64) float64 {
	u = common.Fract(u)
	x := 2 * math.Pi * u
	switch shape {
	case "hills":
		return 0.75 + 0.25*math.Sin(2*x)*math.Cos(x)
	case "dunes":
		return 0.7 + 0.3*math.Abs(math.Sin(1.5*x))
	case "waves":
		return 0.85 + 0.15*math.Sin(8*x)
	case "peaks":
		// sawtooth ridges
		f := common.Fract(u * 4)
		return 0.45 + 0.55*(1-math.Abs(2*f-1))
	case "trees":
		f := common.Fract(u * 12)
		return 0.55 + 0.45*(1-math.Abs(2*f-1))*(0.7+0.3*math.Sin(3*x))
	case "towers":
		steps := []float64{0.6, 0.95, 0.7, 0.85, 0.5, 1, 0.65, 0.8}
		return steps[int(u*float64(len(steps)))%len(steps)]
	case "clouds":
		return 0.5 + 0.5*math.Max(0, math.Sin(3*x))
	case "nebula":
		return 0.6 + 0.4*math.Sin(x)*math.Sin(5*x)
	case "fields":
		return 0.9 + 0.1*math.Sin(2*x)
	}
	return 1
}

// ParseHex reads #rgb or #rrggbb. Anything else falls back to a named color
// from x/image/colornames, and failing that reports false.
func ParseHex(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[strings.ToLower(s)]
		return c, ok
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func hexOr(s string, fallback color.RGBA) color.RGBA {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return fallback
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = common.Clamp(a, 0, 1)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}
