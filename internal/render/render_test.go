package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/gini"
	"github.com/sells-group/choropleth-cli/internal/model"
)

func square(lon0, lat0, lon1, lat1 float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{lon0, lat0}, {lon1, lat0}, {lon1, lat1}, {lon0, lat1}, {lon0, lat0},
	}}})
}

func testScene(t *testing.T) *Scene {
	t.Helper()
	towns := []model.Town{
		{ID: "25025", Name: "Boston", Pop1980: model.NewCount(562994), Pop2010: model.NewCount(617594),
			Geometry: square(-71.2, 42.2, -71.0, 42.4)},
		{ID: "25017", Name: "Cambridge", Pop1980: model.NewCount(95322), Pop2010: model.NewCount(105162),
			Geometry: square(-71.6, 42.3, -71.2, 42.6)},
		{ID: "25099", Name: "Nowhere & Co", Pop1980: model.NewCount(100),
			Geometry: square(-72.0, 42.0, -71.8, 42.2)},
	}
	groups := gini.Group([]model.GiniRecord{
		{CountyID: "25025", Year: 2017, Gini: 0.53, AreaName: "Suffolk County"},
		{CountyID: "25025", Year: 2019, Gini: 0.54, AreaName: "Suffolk County"},
		{CountyID: "25017", Year: 2019, Gini: 0.48, AreaName: "Middlesex County"},
	}, 2019)
	a, err := choropleth.Build(towns, groups, choropleth.DefaultPalette())
	require.NoError(t, err)

	s, err := NewScene(a, 960, 640)
	require.NoError(t, err)
	return s
}

func TestNewScene_PathsForEveryTown(t *testing.T) {
	s := testScene(t)
	assert.Len(t, s.Paths, 3)
	for id, d := range s.Paths {
		assert.True(t, strings.HasPrefix(d, "M"), id)
	}
}

func TestSVG(t *testing.T) {
	s := testScene(t)

	b, err := SVG(s, model.MapGini)
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, `width="960"`)
	assert.Contains(t, out, `viewBox="0 0 960 640"`)
	assert.Equal(t, 3, strings.Count(out, `class="town"`))
	assert.Contains(t, out, `data-id="25025"`)
	assert.Contains(t, out, `data-name="Nowhere &amp; Co"`)
	assert.Contains(t, out, `fill="#cccccc"`)
	assert.Contains(t, out, `stroke="#333"`)
}

func TestSVG_UnknownMap(t *testing.T) {
	_, err := SVG(testScene(t), model.MapKind("bogus"))
	assert.Error(t, err)
}

func TestWritePage(t *testing.T) {
	s := testScene(t)

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, s, true))
	out := buf.String()

	for _, class := range []string{"fig1", "fig2", "fig3"} {
		assert.Contains(t, out, `class="`+class+`"`)
	}
	assert.Contains(t, out, `id="tooltip"`)
	assert.Contains(t, out, "/api/sessions")
	assert.NotContains(t, out, "<?xml")
	assert.Equal(t, 9, strings.Count(out, `class="town"`))
}

func TestWritePage_Static(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, testScene(t), false))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestAppScript_TooltipTextOnly(t *testing.T) {
	assert.NotContains(t, appScript, "innerHTML")
	assert.Contains(t, appScript, "title.textContent = t.title")
	assert.Contains(t, appScript, "document.createTextNode(line)")
	assert.Contains(t, appScript, `createElementNS(svgNS, "path")`)
}

func TestGeoJSON(t *testing.T) {
	s := testScene(t)

	b, err := GeoJSON(s, model.MapGini)
	require.NoError(t, err)

	var fc struct {
		Type     string    `json:"type"`
		BBox     []float64 `json:"bbox"`
		Features []struct {
			ID         string         `json:"id"`
			Geometry   map[string]any `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, []float64{-72, 42, -71, 42.6}, fc.BBox)
	require.Len(t, fc.Features, 3)

	boston := fc.Features[0]
	assert.Equal(t, "25025", boston.ID)
	assert.Equal(t, "MultiPolygon", boston.Geometry["type"])
	assert.Equal(t, 0.54, boston.Properties["value"])
	assert.Equal(t, float64(2019), boston.Properties["gini_year"])
	assert.Equal(t, "Suffolk County", boston.Properties["area_name"])

	nowhere := fc.Features[2]
	assert.Nil(t, nowhere.Properties["value"])
	assert.Equal(t, "#cccccc", nowhere.Properties["fill"])
	assert.NotContains(t, nowhere.Properties, "pop_2010")
}

func TestManifest(t *testing.T) {
	s := testScene(t)

	var buf bytes.Buffer
	require.NoError(t, NewManifest(s).WriteYAML(&buf))

	var got Manifest
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, 960.0, got.Width)
	assert.Equal(t, 2019, got.LatestYear)
	assert.Equal(t, "#cccccc", got.Fallback)
	assert.Equal(t, 2, got.Stats.GiniMatched)
	require.Len(t, got.Maps, 3)
	assert.Equal(t, model.MapChange, got.Maps[1].Kind)
	assert.Equal(t, "fig2", got.Maps[1].Container)
	assert.Equal(t, []float64{-54600, 0, 54600}, got.Maps[1].Domain)
	assert.Equal(t, "gini.geojson", got.Maps[2].GeoJSON)
}

func TestWriteTrend(t *testing.T) {
	s := testScene(t)
	series, ok := s.Atlas.Gini.Series("25025")
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, WriteTrend(&buf, series, 2019))
	assert.Contains(t, buf.String(), "<svg")

	assert.Error(t, WriteTrend(&buf, nil, 2019))
}

func TestYearTicks(t *testing.T) {
	ticks := yearTicks{}.Ticks(2014.5, 2017.2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "2015", ticks[0].Label)
	assert.Equal(t, 2017.0, ticks[2].Value)
}
