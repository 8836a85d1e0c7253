// Package topo decodes TopoJSON topologies into town geometries.
package topo

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/fetcher"
)

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string               `json:"type"`
	BBox      []float64            `json:"bbox,omitempty"`
	Transform *Transform           `json:"transform,omitempty"`
	Objects   map[string]*Geometry `json:"objects"`
	Arcs      [][][]float64        `json:"arcs"`
}

// Transform dequantizes delta-encoded arc positions.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Geometry is a TopoJSON geometry object. Arcs holds arc indexes whose
// nesting depends on Type.
type Geometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []*Geometry     `json:"geometries,omitempty"`
}

// Decode parses a TopoJSON document.
func Decode(r io.Reader) (*Topology, error) {
	t, err := fetcher.DecodeJSONObject[Topology](r)
	if err != nil {
		return nil, eris.Wrap(err, "topo: decode")
	}
	if t.Type != "Topology" {
		return nil, eris.Errorf("topo: expected type Topology, got %q", t.Type)
	}
	return t, nil
}

// FeatureID renders a geometry id as a string. Numeric ids keep their JSON
// text; absent ids are "".
func (g *Geometry) FeatureID() string {
	raw := bytes.TrimSpace(g.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// positions returns every arc as absolute coordinates.
func (t *Topology) positions() [][][2]float64 {
	out := make([][][2]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([][2]float64, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				pts = append(pts, [2]float64{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, [2]float64{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		out[i] = pts
	}
	return out
}
