// Package render draws the colored maps as SVG and exports the page,
// GeoJSON, trend charts and manifest that go with them.
package render

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/projection"
)

// Scene is an atlas laid out at one viewport size. Every map in a scene
// shares the projection, so a town occupies the same pixels on all three.
type Scene struct {
	Atlas      *choropleth.Atlas
	Projection *projection.Projection
	Paths      map[string]string
}

// NewScene fits the projection to every town and precomputes path data.
func NewScene(a *choropleth.Atlas, width, height float64) (*Scene, error) {
	proj, err := projection.Fit(width, height, a.Towns)
	if err != nil {
		return nil, eris.Wrap(err, "render: fit projection")
	}
	s := &Scene{
		Atlas:      a,
		Projection: proj,
		Paths:      make(map[string]string, len(a.Towns)),
	}
	for _, t := range a.Towns {
		s.Paths[t.ID] = proj.Path(t.Geometry)
	}
	return s, nil
}
