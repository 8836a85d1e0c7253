// Package gini parses Gini index tables and derives the per-county latest
// values used to color the inequality map.
package gini

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/fetcher"
	"github.com/sells-group/choropleth-cli/internal/model"
)

// Columns names the Gini table columns.
type Columns struct {
	ID    string
	Year  string
	Index string
	Area  string
}

// DefaultColumns matches the ACS table export.
func DefaultColumns() Columns {
	return Columns{
		ID:    "id",
		Year:  "year",
		Index: "Estimate!!Gini Index",
		Area:  "Geographic Area Name",
	}
}

// ParseStats counts the rows ParseTable dropped.
type ParseStats struct {
	Rows    int
	Skipped int
}

// ParseTable converts table rows into records in source order. County ids
// are reduced to their join key. Rows whose year or index does not parse
// are skipped.
func ParseTable(table *fetcher.Table, cols Columns) ([]model.GiniRecord, ParseStats, error) {
	idCol, ok := table.Column(cols.ID)
	if !ok {
		return nil, ParseStats{}, eris.Errorf("gini: missing column %q", cols.ID)
	}
	yearCol, ok := table.Column(cols.Year)
	if !ok {
		return nil, ParseStats{}, eris.Errorf("gini: missing column %q", cols.Year)
	}
	indexCol, ok := table.Column(cols.Index)
	if !ok {
		return nil, ParseStats{}, eris.Errorf("gini: missing column %q", cols.Index)
	}
	areaCol, hasArea := table.Column(cols.Area)

	stats := ParseStats{Rows: len(table.Rows)}
	records := make([]model.GiniRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		id := strings.TrimSpace(fetcher.Cell(row, idCol))
		year, yErr := strconv.Atoi(strings.TrimSpace(fetcher.Cell(row, yearCol)))
		index, iErr := strconv.ParseFloat(strings.TrimSpace(fetcher.Cell(row, indexCol)), 64)
		if id == "" || yErr != nil || iErr != nil {
			stats.Skipped++
			continue
		}

		rec := model.GiniRecord{
			CountyID: model.JoinKey(id),
			Year:     year,
			Gini:     index,
		}
		if hasArea {
			rec.AreaName = strings.TrimSpace(fetcher.Cell(row, areaCol))
		}
		records = append(records, rec)
	}

	if stats.Skipped > 0 {
		zap.L().Debug("gini: skipped unparseable rows",
			zap.Int("rows", stats.Rows),
			zap.Int("skipped", stats.Skipped),
		)
	}

	return records, stats, nil
}
