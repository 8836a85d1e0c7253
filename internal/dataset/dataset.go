// Package dataset loads the town boundaries and the Gini table together.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/choropleth-cli/internal/config"
	"github.com/sells-group/choropleth-cli/internal/fetcher"
	"github.com/sells-group/choropleth-cli/internal/gini"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/shapes"
	"github.com/sells-group/choropleth-cli/internal/topo"
)

// Sources locates and describes both inputs.
type Sources struct {
	Topology       string
	TopologyObject string
	Gini           string
	GiniSheet      string
	TempDir        string
	TownColumns    shapes.Columns
	GiniColumns    gini.Columns
	LatestYear     int
}

// SourcesFromConfig maps configuration onto Sources.
func SourcesFromConfig(cfg *config.Config) Sources {
	towns := model.TownColumns{
		Name:    cfg.Columns.TownName,
		Pop1980: cfg.Columns.Pop1980,
		Pop2010: cfg.Columns.Pop2010,
	}
	return Sources{
		Topology:       cfg.Sources.Topology,
		TopologyObject: cfg.Sources.TopologyObject,
		Gini:           cfg.Sources.Gini,
		GiniSheet:      cfg.Sources.GiniSheet,
		TempDir:        cfg.Sources.TempDir,
		TownColumns:    shapes.Columns{ID: shapes.DefaultColumns().ID, TownColumns: towns},
		GiniColumns: gini.Columns{
			ID:    cfg.Columns.GiniID,
			Year:  cfg.Columns.GiniYear,
			Index: cfg.Columns.GiniIndex,
			Area:  cfg.Columns.GiniArea,
		},
		LatestYear: cfg.Columns.LatestYear,
	}
}

// NewOpener builds the source opener from the fetch settings.
func NewOpener(cfg *config.Config) *fetcher.Source {
	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    timeout,
		MaxRetries: cfg.Fetch.MaxRetries,
		RatePerSec: cfg.Fetch.RatePerSec,
	})
	ftpFetcher := fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout})
	return fetcher.NewSource(httpFetcher, ftpFetcher, cfg.Sources.TempDir)
}

// Data is both inputs, parsed. Groups are sorted by year.
type Data struct {
	Towns     []model.Town
	Records   []model.GiniRecord
	Groups    *gini.Groups
	GiniStats gini.ParseStats
}

// Load fetches the topology and the Gini table concurrently. Data is
// returned only when both succeed; the first failure cancels the other.
func Load(ctx context.Context, op fetcher.Opener, src Sources) (*Data, error) {
	start := time.Now()
	var (
		towns   []model.Town
		records []model.GiniRecord
		stats   gini.ParseStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		towns, err = loadTowns(gCtx, op, src)
		return err
	})
	g.Go(func() error {
		var err error
		records, stats, err = loadGini(gCtx, op, src)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &Data{
		Towns:     towns,
		Records:   records,
		Groups:    gini.Group(records, src.LatestYear),
		GiniStats: stats,
	}

	zap.L().Info("dataset: loaded",
		zap.Int("towns", len(towns)),
		zap.Int("gini_records", len(records)),
		zap.Int("gini_skipped", stats.Skipped),
		zap.Int("counties", data.Groups.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func loadTowns(ctx context.Context, op fetcher.Opener, src Sources) ([]model.Town, error) {
	switch fetcher.Ext(src.Topology) {
	case ".shp":
		path, err := op.Localize(ctx, src.Topology)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: localize shapefile")
		}
		return shapes.ReadTowns(path, src.TownColumns)

	case ".zip":
		path, err := op.Localize(ctx, src.Topology)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: localize shapefile archive")
		}
		dir := filepath.Join(src.TempDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "dataset: create extract dir")
		}
		shpPath, err := fetcher.ExtractShapefile(path, dir)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: extract shapefile archive")
		}
		return shapes.ReadTowns(shpPath, src.TownColumns)

	default:
		rc, err := op.Open(ctx, src.Topology)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open topology")
		}
		defer func() { _ = rc.Close() }()

		t, err := topo.Decode(rc)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode topology")
		}
		towns, err := topo.Towns(t, src.TopologyObject, src.TownColumns.TownColumns)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: topology towns")
		}
		return towns, nil
	}
}

func loadGini(ctx context.Context, op fetcher.Opener, src Sources) ([]model.GiniRecord, gini.ParseStats, error) {
	var table *fetcher.Table

	if fetcher.Ext(src.Gini) == ".xlsx" {
		path, err := op.Localize(ctx, src.Gini)
		if err != nil {
			return nil, gini.ParseStats{}, eris.Wrap(err, "dataset: localize gini workbook")
		}
		table, err = fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{SheetName: src.GiniSheet})
		if err != nil {
			return nil, gini.ParseStats{}, eris.Wrap(err, "dataset: read gini workbook")
		}
	} else {
		rc, err := op.Open(ctx, src.Gini)
		if err != nil {
			return nil, gini.ParseStats{}, eris.Wrap(err, "dataset: open gini table")
		}
		defer func() { _ = rc.Close() }()

		table, err = fetcher.ReadCSVTable(ctx, rc, fetcher.CSVOptions{TrimSpace: true})
		if err != nil {
			return nil, gini.ParseStats{}, eris.Wrap(err, "dataset: read gini csv")
		}
	}

	records, stats, err := gini.ParseTable(table, src.GiniColumns)
	if err != nil {
		return nil, gini.ParseStats{}, eris.Wrap(err, "dataset: parse gini table")
	}
	return records, stats, nil
}
