package scale

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot/palette/brewer"
)

// Interpolator maps t in [0, 1] to a color.
type Interpolator func(t float64) color.RGBA

// RGB interpolates linearly between two colors in RGB space.
func RGB(from, to color.Color) Interpolator {
	a, b := toRGBA(from), toRGBA(to)
	return func(t float64) color.RGBA {
		t = clamp01(t)
		return color.RGBA{
			R: lerp8(a.R, b.R, t),
			G: lerp8(a.G, b.G, t),
			B: lerp8(a.B, b.B, t),
			A: 0xff,
		}
	}
}

// Ramp interpolates piecewise-linearly through evenly spaced stops.
func Ramp(stops []color.Color) Interpolator {
	cs := make([]color.RGBA, len(stops))
	for i, c := range stops {
		cs[i] = toRGBA(c)
	}
	return func(t float64) color.RGBA {
		switch len(cs) {
		case 0:
			return color.RGBA{A: 0xff}
		case 1:
			return cs[0]
		}
		pos := clamp01(t) * float64(len(cs)-1)
		i := int(math.Floor(pos))
		if i >= len(cs)-1 {
			return cs[len(cs)-1]
		}
		return RGB(cs[i], cs[i+1])(pos - float64(i))
	}
}

// rdBuClasses is the largest RdBu class count ColorBrewer defines.
const rdBuClasses = 11

// RdBu is the ColorBrewer red-white-blue diverging ramp.
func RdBu() (Interpolator, error) {
	p, err := brewer.GetPalette(brewer.TypeDiverging, "RdBu", rdBuClasses)
	if err != nil {
		return nil, eris.Wrap(err, "scale: load RdBu palette")
	}
	return Ramp(p.Colors()), nil
}

// plasmaStops samples the matplotlib plasma colormap at ninths.
var plasmaStops = []string{
	"#0d0887", "#4c02a1", "#7e03a8", "#a92395", "#cc4778",
	"#e66c5c", "#f89540", "#fdc527", "#f0f921",
}

// Plasma is the perceptually uniform purple-to-yellow sequential ramp.
func Plasma() Interpolator {
	stops := make([]color.Color, len(plasmaStops))
	for i, h := range plasmaStops {
		stops[i] = MustParseHex(h)
	}
	return Ramp(stops)
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 0.5
	}
	return math.Max(0, math.Min(1, t))
}
