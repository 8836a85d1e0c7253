package render

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/model"
)

// Manifest describes a render: sizes, scale domains and join statistics.
type Manifest struct {
	Width      float64          `yaml:"width"`
	Height     float64          `yaml:"height"`
	LatestYear int              `yaml:"latest_year"`
	Fallback   string           `yaml:"fallback"`
	Stats      choropleth.Stats `yaml:"stats"`
	Maps       []MapManifest    `yaml:"maps"`
}

// MapManifest describes one map.
type MapManifest struct {
	Kind      model.MapKind `yaml:"kind"`
	Container string        `yaml:"container"`
	Domain    []float64     `yaml:"domain"`
	SVG       string        `yaml:"svg"`
	GeoJSON   string        `yaml:"geojson"`
}

// NewManifest summarizes a scene.
func NewManifest(s *Scene) *Manifest {
	a := s.Atlas
	man := &Manifest{
		Width:      s.Projection.Width,
		Height:     s.Projection.Height,
		LatestYear: a.Gini.LatestYear(),
		Fallback:   a.Palette.Fallback,
		Stats:      a.Stats,
	}
	for _, kind := range model.AllMapKinds() {
		m, ok := a.Map(kind)
		if !ok {
			continue
		}
		man.Maps = append(man.Maps, MapManifest{
			Kind:      kind,
			Container: kind.Container(),
			Domain:    m.Scale.Domain(),
			SVG:       string(kind) + ".svg",
			GeoJSON:   string(kind) + ".geojson",
		})
	}
	return man
}

// WriteYAML encodes the manifest.
func (m *Manifest) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return eris.Wrap(err, "render: encode manifest")
	}
	return eris.Wrap(enc.Close(), "render: close manifest encoder")
}
