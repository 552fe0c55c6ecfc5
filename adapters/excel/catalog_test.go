package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"goanalytics/internal"
	apperrors "goanalytics/internal/errors"
)

func quietLogger() *internal.Logger { return internal.NewLogger(internal.LogLevelError) }

func writeWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "datasets.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestCatalog_EachSheetIsADataset(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"sales": {
			{"date", "amount", "region", "qty"},
			{"2026-01-01", 120.5, "north", 3},
			{"2026-01-02", 80, "south", 1},
			{"", "", "", ""},
			{"2026-01-03", 200, "north", 7},
		},
		"notes": {
			{"author", "text"},
			{"ana", "hello"},
		},
		"empty": {},
	}, []string{"sales", "notes", "empty"})

	datasets, err := NewCatalog(path, quietLogger()).ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	sales := datasets[0]
	assert.Equal(t, "sales", sales.Name)
	assert.Equal(t, 3, sales.DocumentCount)
	assert.Equal(t, []string{"date", "amount", "region", "qty"}, sales.SampleFields)
	assert.Equal(t, []string{"amount", "qty"}, sales.NumericFields)

	amount := sales.Profiles["amount"]
	assert.Equal(t, 3, amount.Count)
	assert.InDelta(t, 133.5, amount.Mean, 1e-9)
	assert.Equal(t, 80.0, amount.Min)
	assert.Equal(t, 200.0, amount.Max)

	notes := datasets[1]
	assert.Equal(t, "notes", notes.Name)
	assert.Empty(t, notes.NumericFields)
	assert.Equal(t, 1, notes.DocumentCount)
}

func TestCatalog_ReadsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web_traffic.csv")
	require.NoError(t, os.WriteFile(path, []byte("ts,visits,page\n2026-01-01,10,/\n2026-01-02,12,/about\n"), 0o644))

	datasets, err := NewCatalog(path, quietLogger()).ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "web_traffic", datasets[0].Name)
	assert.Equal(t, 2, datasets[0].DocumentCount)
	assert.Equal(t, []string{"visits"}, datasets[0].NumericFields)
}

func TestCatalog_MissingFile(t *testing.T) {
	_, err := NewCatalog(filepath.Join(t.TempDir(), "nope.xlsx"), quietLogger()).ListDatasets(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCatalogError, apperrors.GetCode(err))
}
