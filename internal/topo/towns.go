package topo

import (
	"github.com/sells-group/choropleth-cli/internal/model"
)

// Towns converts the named object into towns, reading attributes through
// cols.
func Towns(t *Topology, object string, cols model.TownColumns) ([]model.Town, error) {
	features, err := Features(t, object)
	if err != nil {
		return nil, err
	}

	towns := make([]model.Town, 0, len(features))
	for _, f := range features {
		towns = append(towns, model.TownFromProperties(f.ID, f.Properties, cols, f.Geometry))
	}
	return towns, nil
}
