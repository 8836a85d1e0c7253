package render

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// GeoJSON exports one map as a FeatureCollection in lon/lat, each feature
// carrying the town attributes plus its value and fill color.
func GeoJSON(s *Scene, kind model.MapKind) ([]byte, error) {
	m, ok := s.Atlas.Map(kind)
	if !ok {
		return nil, eris.Errorf("render: unknown map %q", kind)
	}

	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(m.Fills)),
	}
	bounds := geom.NewBounds(geom.XY)
	for _, f := range m.Fills {
		town, ok := s.Atlas.Town(f.ID)
		if !ok || town.Geometry == nil {
			continue
		}
		bounds.Extend(town.Geometry)

		props := map[string]any{
			"name":  town.Name,
			"map":   string(kind),
			"fill":  f.Color,
			"value": nil,
		}
		if f.HasValue {
			props["value"] = f.Value
		}
		if town.Pop1980.Valid {
			props["pop_1980"] = town.Pop1980.N
		}
		if town.Pop2010.Valid {
			props["pop_2010"] = town.Pop2010.N
		}
		if kind == model.MapGini {
			if rec, ok := s.Atlas.Gini.LatestRecord(town.ID); ok {
				props["gini_year"] = rec.Year
				props["area_name"] = rec.AreaName
			}
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         town.ID,
			Geometry:   town.Geometry,
			Properties: props,
		})
	}
	if len(fc.Features) > 0 {
		fc.BBox = bounds
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal geojson")
	}
	return b, nil
}
