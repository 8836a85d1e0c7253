package render

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/sells-group/choropleth-cli/internal/gini"
)

// Trend chart size.
const (
	TrendWidth  = 4 * vg.Inch
	TrendHeight = 2.5 * vg.Inch
)

// WriteTrend draws a county's full Gini series as a labeled line chart,
// the expanded view of the tooltip sparkline.
func WriteTrend(w io.Writer, series gini.Series, latestYear int) error {
	if len(series) == 0 {
		return eris.New("render: empty gini series")
	}

	p := plot.New()
	p.Title.Text = series.AreaName()
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Gini Index"
	p.X.Tick.Marker = yearTicks{}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(series))
	for i, r := range series {
		pts[i].X = float64(r.Year)
		pts[i].Y = r.Gini
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return eris.Wrap(err, "render: trend line")
	}
	line.Width = vg.Points(1.5)
	points.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, points)

	if latest, ok := series.Latest(latestYear); ok {
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(latest.Year), Y: latest.Gini}},
			Labels: []string{fmt.Sprintf("%.3f", latest.Gini)},
		})
		if err != nil {
			return eris.Wrap(err, "render: trend label")
		}
		p.Add(labels)
	}

	c := vgsvg.New(TrendWidth, TrendHeight)
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return eris.Wrap(err, "render: write trend svg")
	}
	return nil
}

// yearTicks labels whole years only.
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	for y := int(lo); float64(y) <= hi; y++ {
		if float64(y) < lo {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: fmt.Sprint(y)})
	}
	return ticks
}
