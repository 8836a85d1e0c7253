package interact

import (
	"strconv"
	"strings"

	"github.com/sells-group/choropleth-cli/internal/gini"
)

// Sparkline geometry for the Gini tooltip.
const (
	SparkWidth  = 140
	SparkHeight = 50
	SparkPad    = 5
)

// Sparkline is a county's Gini trend scaled into its own small box.
type Sparkline struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Points []Point `json:"points"`
	Path   string  `json:"path"`
}

// NewSparkline scales a series into a SparkWidth x SparkHeight box: years
// across, Gini upward, each over its own extent.
func NewSparkline(s gini.Series) *Sparkline {
	sp := &Sparkline{Width: SparkWidth, Height: SparkHeight}
	if len(s) == 0 {
		return sp
	}

	x0, x1 := float64(s[0].Year), float64(s[0].Year)
	y0, y1 := s[0].Gini, s[0].Gini
	for _, r := range s[1:] {
		x0, x1 = min(x0, float64(r.Year)), max(x1, float64(r.Year))
		y0, y1 = min(y0, r.Gini), max(y1, r.Gini)
	}

	var b strings.Builder
	sp.Points = make([]Point, len(s))
	for i, r := range s {
		p := Point{
			X: rescale(float64(r.Year), x0, x1, SparkPad, SparkWidth-SparkPad),
			Y: rescale(r.Gini, y0, y1, SparkHeight-SparkPad, SparkPad),
		}
		sp.Points[i] = p
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', 2, 64))
	}
	sp.Path = b.String()
	return sp
}

// rescale maps v from [d0, d1] to [r0, r1]; a flat domain maps to the
// range midpoint.
func rescale(v, d0, d1, r0, r1 float64) float64 {
	if d1 == d0 {
		return (r0 + r1) / 2
	}
	return r0 + (v-d0)/(d1-d0)*(r1-r0)
}
