// Package shapes reads town boundaries from ESRI shapefiles, the format
// MassGIS distributes its town survey layer in.
package shapes

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// Columns names the attribute fields read from the .dbf. ID is the field
// holding the town's join identifier.
type Columns struct {
	ID string
	model.TownColumns
}

// DefaultColumns matches the MassGIS TOWNSSURVEY_POLYM layer.
func DefaultColumns() Columns {
	return Columns{ID: "TOWN_ID", TownColumns: model.DefaultTownColumns()}
}

// ReadTowns reads every polygon record of a shapefile as a town. Records
// without polygon geometry are skipped.
func ReadTowns(shpPath string, cols Columns) ([]model.Town, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapes: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	if len(fields) == 0 {
		return nil, eris.Errorf("shapes: no attribute table next to %s", shpPath)
	}
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(name string) any {
		idx, ok := fieldIdx[strings.ToLower(name)]
		if !ok {
			return nil
		}
		val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		if val == "" {
			return nil
		}
		return val
	}

	var towns []model.Town
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		mp := ToMultiPolygon(shape)
		if mp == nil {
			skipped++
			continue
		}

		id, _ := attr(cols.ID).(string)
		props := map[string]any{
			cols.Name:    attr(cols.Name),
			cols.Pop1980: attr(cols.Pop1980),
			cols.Pop2010: attr(cols.Pop2010),
		}
		towns = append(towns, model.TownFromProperties(id, props, cols.TownColumns, mp))
	}

	if skipped > 0 {
		zap.L().Debug("shapes: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return towns, nil
}

// ToMultiPolygon converts a shapefile polygon to a MultiPolygon with one
// polygon per part. Returns nil for other shape types or empty polygons.
func ToMultiPolygon(shape shp.Shape) *geom.MultiPolygon {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(p.Points)) {
			zap.L().Debug("shapes: skipping malformed polygon part", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("shapes: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("shapes: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
