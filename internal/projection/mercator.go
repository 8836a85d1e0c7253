// Package projection fits a Mercator projection to a town collection and
// renders town geometry as SVG path data.
package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// Projection maps lon/lat to pixel coordinates inside a width x height
// viewport. It is immutable once fitted and shared by all three maps.
type Projection struct {
	Width  float64
	Height float64

	k  float64
	tx float64
	ty float64
}

// mercator projects to web mercator meters with y pointing down.
func mercator(lon, lat float64) (float64, float64) {
	p := project.WGS84.ToMercator(orb.Point{lon, lat})
	return p[0], -p[1]
}

// Fit scales and centers the projection so the bounds of every town fill
// the viewport. Mercator is monotonic per axis, so projecting the lon/lat
// bounding box corners gives the projected bounds.
func Fit(width, height float64, towns []model.Town) (*Projection, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("projection: invalid size %gx%g", width, height)
	}

	bounds := geom.NewBounds(geom.XY)
	found := false
	for _, t := range towns {
		if t.Geometry == nil || t.Geometry.Empty() {
			continue
		}
		bounds.Extend(t.Geometry)
		found = true
	}
	if !found {
		return nil, eris.New("projection: no geometry to fit")
	}

	x0, y1 := mercator(bounds.Min(0), bounds.Min(1))
	x1, y0 := mercator(bounds.Max(0), bounds.Max(1))
	return fitExtent(width, height, x0, y0, x1, y1), nil
}

func fitExtent(width, height, x0, y0, x1, y1 float64) *Projection {
	dx, dy := x1-x0, y1-y0
	k := math.Inf(1)
	if dx > 0 {
		k = width / dx
	}
	if dy > 0 {
		k = math.Min(k, height/dy)
	}
	if math.IsInf(k, 1) {
		// A single point: no scale, just center it.
		k = 1
	}
	return &Projection{
		Width:  width,
		Height: height,
		k:      k,
		tx:     (width - k*(x0+x1)) / 2,
		ty:     (height - k*(y0+y1)) / 2,
	}
}

// Project converts lon/lat to pixel coordinates.
func (p *Projection) Project(lon, lat float64) (x, y float64) {
	mx, my := mercator(lon, lat)
	return p.k*mx + p.tx, p.k*my + p.ty
}

// Path renders a MultiPolygon as SVG path data, one closed subpath per ring.
func (p *Projection) Path(g *geom.MultiPolygon) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	for _, polygon := range g.Coords() {
		for _, ring := range polygon {
			p.writeRing(&b, ring)
		}
	}
	return b.String()
}

func (p *Projection) writeRing(b *strings.Builder, ring []geom.Coord) {
	if len(ring) == 0 {
		return
	}
	for i, c := range ring {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		x, y := p.Project(c.X(), c.Y())
		b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
	}
	b.WriteByte('Z')
}
