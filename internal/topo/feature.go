package topo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Feature is one geometry of a topology object converted to polygons.
// Geometry is nil for null geometries.
type Feature struct {
	ID         string
	Properties map[string]any
	Geometry   *geom.MultiPolygon
}

// Features converts the named object into features. A GeometryCollection
// yields one feature per member; any other object yields one feature.
func Features(t *Topology, object string) ([]Feature, error) {
	obj, ok := t.Objects[object]
	if !ok || obj == nil {
		return nil, eris.Errorf("topo: object %q not found", object)
	}

	arcs := t.positions()
	members := []*Geometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}

	features := make([]Feature, 0, len(members))
	var skipped int
	for _, g := range members {
		if g == nil {
			continue
		}
		mp, err := multiPolygon(g, arcs)
		if err != nil {
			return nil, eris.Wrapf(err, "topo: feature %q", g.FeatureID())
		}
		if mp == nil && g.Type != "" {
			skipped++
		}
		features = append(features, Feature{
			ID:         g.FeatureID(),
			Properties: g.Properties,
			Geometry:   mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("topo: features without polygon geometry",
			zap.String("object", object),
			zap.Int("count", skipped),
		)
	}
	return features, nil
}

// multiPolygon converts Polygon and MultiPolygon geometries. Other types
// return nil.
func multiPolygon(g *Geometry, arcs [][][2]float64) (*geom.MultiPolygon, error) {
	var polys [][][]int
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, eris.Wrap(err, "decode polygon arcs")
		}
		polys = [][][]int{rings}
	case "MultiPolygon":
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, eris.Wrap(err, "decode multipolygon arcs")
		}
	default:
		return nil, nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, rings := range polys {
		poly := geom.NewPolygon(geom.XY)
		for _, indexes := range rings {
			flat, err := stitch(indexes, arcs)
			if err != nil {
				return nil, err
			}
			if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
				return nil, eris.Wrap(err, "push ring")
			}
		}
		if poly.NumLinearRings() == 0 {
			continue
		}
		if err := mp.Push(poly); err != nil {
			return nil, eris.Wrap(err, "push polygon")
		}
	}
	return mp, nil
}

// stitch joins arcs into a closed ring. A negative index ~i walks arc i
// backwards; consecutive arcs share an endpoint, which is kept once.
func stitch(indexes []int, arcs [][][2]float64) ([]float64, error) {
	var pts [][2]float64
	for _, idx := range indexes {
		i, reversed := idx, false
		if idx < 0 {
			i, reversed = ^idx, true
		}
		if i >= len(arcs) {
			return nil, eris.Errorf("arc index %d out of range (%d arcs)", idx, len(arcs))
		}

		if len(pts) > 0 {
			pts = pts[:len(pts)-1]
		}
		arc := arcs[i]
		if reversed {
			for k := len(arc) - 1; k >= 0; k-- {
				pts = append(pts, arc[k])
			}
		} else {
			pts = append(pts, arc...)
		}
	}

	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}

	flat := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		flat = append(flat, p[0], p[1])
	}
	return flat, nil
}
