package fetcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"4", "5", "6"}, rows[2])
}

func TestStreamCSV_StripsBOM(t *testing.T) {
	input := "\ufeffid,year\n0500000US25001,2019\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " a , b \n 1 , 2 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_ContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b,c\n1,2,3\n"), CSVOptions{})
	for range rowCh {
	}
	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "context")
}

func TestReadCSVTable(t *testing.T) {
	input := "id,year,Estimate!!Gini Index,Geographic Area Name\n" +
		"0500000US25025,2019,0.5353,\"Suffolk County, Massachusetts\"\n" +
		"0500000US25017,2019,0.4812\n"

	table, err := ReadCSVTable(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	col, ok := table.Column("Estimate!!Gini Index")
	require.True(t, ok)
	assert.Equal(t, 2, col)
	assert.Equal(t, "0.5353", Cell(table.Rows[0], col))

	area, ok := table.Column("Geographic Area Name")
	require.True(t, ok)
	assert.Equal(t, "Suffolk County, Massachusetts", Cell(table.Rows[0], area))
	assert.Equal(t, "", Cell(table.Rows[1], area), "short rows read as empty")

	_, ok = table.Column("missing")
	assert.False(t, ok)
}

func TestReadCSVTable_Malformed(t *testing.T) {
	_, err := ReadCSVTable(context.Background(), strings.NewReader("a,\"b\n"), CSVOptions{})
	require.Error(t, err)
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}
