package projection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choropleth-cli/internal/model"
)

func square(lon0, lat0, lon1, lat1 float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{lon0, lat0}, {lon1, lat0}, {lon1, lat1}, {lon0, lat1}, {lon0, lat0},
	}}})
}

func testTowns() []model.Town {
	return []model.Town{
		{ID: "25025", Geometry: square(-71.2, 42.2, -71.0, 42.4)},
		{ID: "25017", Geometry: square(-71.6, 42.3, -71.2, 42.6)},
		{ID: "empty"},
	}
}

func TestFit_BoundsInsideViewport(t *testing.T) {
	p, err := Fit(960, 640, testTowns())
	require.NoError(t, err)

	// Corners of the union bounds land on the viewport edge on the
	// constraining axis and inside it on the other.
	x0, y0 := p.Project(-71.6, 42.6)
	x1, y1 := p.Project(-71.0, 42.2)

	assert.GreaterOrEqual(t, x0, -0.001)
	assert.GreaterOrEqual(t, y0, -0.001)
	assert.LessOrEqual(t, x1, 960.001)
	assert.LessOrEqual(t, y1, 640.001)

	touchesX := x0 < 0.01 && x1 > 959.99
	touchesY := y0 < 0.01 && y1 > 639.99
	assert.True(t, touchesX || touchesY)

	// Centered on both axes.
	assert.InDelta(t, 960-x1, x0, 0.001)
	assert.InDelta(t, 640-y1, y0, 0.001)
}

func TestFit_NorthIsUp(t *testing.T) {
	p, err := Fit(960, 640, testTowns())
	require.NoError(t, err)

	_, south := p.Project(-71.3, 42.2)
	_, north := p.Project(-71.3, 42.6)
	assert.Less(t, north, south)

	west, _ := p.Project(-71.6, 42.4)
	east, _ := p.Project(-71.0, 42.4)
	assert.Less(t, west, east)
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(0, 640, testTowns())
	assert.Error(t, err)

	_, err = Fit(960, 640, []model.Town{{ID: "x"}})
	assert.Error(t, err)
}

func TestFit_SinglePoint(t *testing.T) {
	pt := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{-71, 42}, {-71, 42}, {-71, 42}, {-71, 42},
	}}})
	p, err := Fit(100, 50, []model.Town{{ID: "p", Geometry: pt}})
	require.NoError(t, err)

	x, y := p.Project(-71, 42)
	assert.InDelta(t, 50, x, 0.001)
	assert.InDelta(t, 25, y, 0.001)
}

func TestPath(t *testing.T) {
	p, err := Fit(960, 640, testTowns())
	require.NoError(t, err)

	d := p.Path(testTowns()[0].Geometry)
	assert.True(t, strings.HasPrefix(d, "M"))
	assert.True(t, strings.HasSuffix(d, "Z"))
	assert.Equal(t, 4, strings.Count(d, "L"))

	assert.Equal(t, "", p.Path(nil))
}

func TestPath_MultipleRings(t *testing.T) {
	p, err := Fit(960, 640, testTowns())
	require.NoError(t, err)

	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{-71.2, 42.2}, {-71.0, 42.2}, {-71.0, 42.4}, {-71.2, 42.2}}},
		{{{-71.6, 42.3}, {-71.2, 42.3}, {-71.2, 42.6}, {-71.6, 42.3}}},
	})
	d := p.Path(mp)
	assert.Equal(t, 2, strings.Count(d, "M"))
	assert.Equal(t, 2, strings.Count(d, "Z"))
}
