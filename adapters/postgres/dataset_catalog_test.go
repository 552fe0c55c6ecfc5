package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanalytics/domain/analysis"
)

func TestRowMapping(t *testing.T) {
	row := rowFor(analysis.DatasetDescriptor{
		Name:          "sales",
		DocumentCount: -4,
		NumericFields: []string{"amount"},
	})
	assert.Equal(t, 0, row.DocumentCount)
	assert.Empty(t, row.SampleFields)
	assert.NotNil(t, row.SampleFields)

	ds := datasetRow{Name: "sales", DocumentCount: 10, NumericFields: nil}.descriptor()
	assert.NotNil(t, ds.NumericFields)
	assert.NotNil(t, ds.SampleFields)
}

func TestDatasetCatalog_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, `DROP TABLE IF EXISTS analytics_datasets`)

	catalog := NewDatasetCatalog(db)
	require.NoError(t, catalog.EnsureSchema(ctx))

	require.NoError(t, catalog.Upsert(ctx,
		analysis.DatasetDescriptor{Name: "sales", DocumentCount: 100, NumericFields: []string{"amount"}, SampleFields: []string{"amount", "region"}},
		analysis.DatasetDescriptor{Name: "sensors", DocumentCount: 5},
	))
	require.NoError(t, catalog.Upsert(ctx, analysis.DatasetDescriptor{Name: "sales", DocumentCount: 250, NumericFields: []string{"amount", "qty"}}))

	datasets, err := catalog.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "sales", datasets[0].Name)
	assert.Equal(t, 250, datasets[0].DocumentCount)
	assert.Equal(t, []string{"amount", "qty"}, datasets[0].NumericFields)
	assert.Equal(t, "sensors", datasets[1].Name)
	assert.Empty(t, datasets[1].SampleFields)
}
