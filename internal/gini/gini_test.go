package gini

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/choropleth-cli/internal/fetcher"
	"github.com/sells-group/choropleth-cli/internal/model"
)

const sampleCSV = `id,year,Estimate!!Gini Index,Geographic Area Name
0500000US25025,2017,0.5301,"Suffolk County, Massachusetts"
0500000US25025,2019,0.5353,"Suffolk County, Massachusetts"
0500000US25025,2015,0.5250,"Suffolk County, Massachusetts"
0500000US25017,2017,0.4890,"Middlesex County, Massachusetts"
0500000US25017,2015,0.4801,"Middlesex County, Massachusetts"
0500000US25001,2019,(X),"Barnstable County, Massachusetts"
`

func readSample(t *testing.T) *fetcher.Table {
	t.Helper()
	table, err := fetcher.ReadCSVTable(context.Background(), strings.NewReader(sampleCSV), fetcher.CSVOptions{})
	require.NoError(t, err)
	return table
}

func TestParseTable(t *testing.T) {
	records, stats, err := ParseTable(readSample(t), DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	require.Len(t, records, 5)

	assert.Equal(t, model.GiniRecord{
		CountyID: "25025",
		Year:     2017,
		Gini:     0.5301,
		AreaName: "Suffolk County, Massachusetts",
	}, records[0])
}

func TestParseTable_MissingColumn(t *testing.T) {
	table := fetcher.NewTable([][]string{{"id", "year"}, {"25025", "2019"}})
	_, _, err := ParseTable(table, DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Estimate!!Gini Index")
}

func TestParseTable_NoAreaColumn(t *testing.T) {
	table := fetcher.NewTable([][]string{
		{"id", "year", "Estimate!!Gini Index"},
		{"0500000US25025", "2019", "0.5"},
	})
	records, _, err := ParseTable(table, DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].AreaName)
}

func TestGroup_SortsByYear(t *testing.T) {
	records, _, err := ParseTable(readSample(t), DefaultColumns())
	require.NoError(t, err)

	groups := Group(records, 2019)
	assert.Equal(t, 2, groups.Len())
	assert.Equal(t, []string{"25017", "25025"}, groups.Counties())

	suffolk, ok := groups.Series("25025")
	require.True(t, ok)
	years := make([]int, 0, len(suffolk))
	for _, r := range suffolk {
		years = append(years, r.Year)
	}
	assert.Equal(t, []int{2015, 2017, 2019}, years)
	assert.Equal(t, "Suffolk County, Massachusetts", suffolk.AreaName())
}

func TestGroup_LatestPrefersYear(t *testing.T) {
	records, _, err := ParseTable(readSample(t), DefaultColumns())
	require.NoError(t, err)
	groups := Group(records, 2019)

	v, ok := groups.Latest("25025")
	require.True(t, ok)
	assert.InDelta(t, 0.5353, v, 1e-9)
}

func TestGroup_LatestFallsBackToLastYear(t *testing.T) {
	// Middlesex only has 2015 and 2017.
	records, _, err := ParseTable(readSample(t), DefaultColumns())
	require.NoError(t, err)
	groups := Group(records, 2019)

	v, ok := groups.Latest("25017")
	require.True(t, ok)
	assert.InDelta(t, 0.4890, v, 1e-9)

	rec, ok := groups.LatestRecord("25017")
	require.True(t, ok)
	assert.Equal(t, 2017, rec.Year)
}

func TestGroup_JoinBySuffix(t *testing.T) {
	groups := Group([]model.GiniRecord{{CountyID: "25025", Year: 2019, Gini: 0.5}}, 2019)

	_, ok := groups.Latest("0500000US25025")
	assert.True(t, ok)
	_, ok = groups.Latest("25001")
	assert.False(t, ok)
	_, ok = groups.Series("nope")
	assert.False(t, ok)
}

func TestGroup_DuplicateYearsKeepSourceOrder(t *testing.T) {
	groups := Group([]model.GiniRecord{
		{CountyID: "25025", Year: 2019, Gini: 0.1},
		{CountyID: "25025", Year: 2019, Gini: 0.2},
	}, 2019)

	v, ok := groups.Latest("25025")
	require.True(t, ok)
	assert.InDelta(t, 0.1, v, 1e-9)
}

func TestGroup_LatestValues(t *testing.T) {
	records, _, err := ParseTable(readSample(t), DefaultColumns())
	require.NoError(t, err)
	groups := Group(records, 2019)

	assert.InDeltaSlice(t, []float64{0.4890, 0.5353}, groups.LatestValues(), 1e-9)
	assert.Equal(t, 2019, groups.LatestYear())
}

func TestSeriesLatest_Empty(t *testing.T) {
	_, ok := Series(nil).Latest(2019)
	assert.False(t, ok)
	assert.Equal(t, "", Series(nil).AreaName())
}
