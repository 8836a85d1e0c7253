package gini

import (
	"slices"
	"sort"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// Series is one county's records ordered by year.
type Series []model.GiniRecord

// Latest returns the record for year, or the last record when that year is
// absent. ok is false for an empty series.
func (s Series) Latest(year int) (rec model.GiniRecord, ok bool) {
	if len(s) == 0 {
		return model.GiniRecord{}, false
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Year >= year })
	if i < len(s) && s[i].Year == year {
		return s[i], true
	}
	return s[len(s)-1], true
}

// AreaName returns the first record's area name, the label shown in
// tooltips and summaries.
func (s Series) AreaName() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].AreaName
}

// Groups indexes series by county join key. It is read-only once built.
type Groups struct {
	byCounty   map[string]Series
	latestYear int
	latest     map[string]float64
}

// Group partitions records by county and sorts each group by year once.
// The sort is stable, so duplicate years keep their source order.
func Group(records []model.GiniRecord, latestYear int) *Groups {
	g := &Groups{
		byCounty:   make(map[string]Series),
		latestYear: latestYear,
		latest:     make(map[string]float64),
	}
	for _, r := range records {
		g.byCounty[r.CountyID] = append(g.byCounty[r.CountyID], r)
	}
	for id, s := range g.byCounty {
		slices.SortStableFunc(s, func(a, b model.GiniRecord) int { return a.Year - b.Year })
		if rec, ok := s.Latest(latestYear); ok {
			g.latest[id] = rec.Gini
		}
	}
	return g
}

// Series returns the county's records for a town or county id.
func (g *Groups) Series(id string) (Series, bool) {
	s, ok := g.byCounty[model.JoinKey(id)]
	return s, ok
}

// Latest returns the latest Gini value for a town or county id.
func (g *Groups) Latest(id string) (float64, bool) {
	v, ok := g.latest[model.JoinKey(id)]
	return v, ok
}

// LatestRecord returns the record Latest reads its value from.
func (g *Groups) LatestRecord(id string) (model.GiniRecord, bool) {
	s, ok := g.Series(id)
	if !ok {
		return model.GiniRecord{}, false
	}
	return s.Latest(g.latestYear)
}

// LatestYear is the preferred year.
func (g *Groups) LatestYear() int {
	return g.latestYear
}

// LatestValues returns every county's latest value, sorted by county id.
func (g *Groups) LatestValues() []float64 {
	ids := g.Counties()
	out := make([]float64, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.latest[id])
	}
	return out
}

// Counties returns the county ids in sorted order.
func (g *Groups) Counties() []string {
	ids := make([]string, 0, len(g.byCounty))
	for id := range g.byCounty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of counties.
func (g *Groups) Len() int {
	return len(g.byCounty)
}
