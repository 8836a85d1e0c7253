package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/config"
	"github.com/sells-group/choropleth-cli/internal/dataset"
)

// loadAtlas validates the config for mode, loads both sources and builds
// the colored maps.
func loadAtlas(ctx context.Context, c *config.Config, mode string) (*choropleth.Atlas, *dataset.Data, error) {
	if err := c.Validate(mode); err != nil {
		return nil, nil, err
	}

	data, err := dataset.Load(ctx, dataset.NewOpener(c), dataset.SourcesFromConfig(c))
	if err != nil {
		return nil, nil, eris.Wrap(err, "load sources")
	}

	atlas, err := choropleth.Build(data.Towns, data.Groups, choropleth.Palette{
		PopLow:   c.Render.PopLow,
		PopHigh:  c.Render.PopHigh,
		Fallback: c.Render.Fallback,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "build maps")
	}
	return atlas, data, nil
}
