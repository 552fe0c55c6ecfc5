package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"goanalytics/domain/analysis"
	apperrors "goanalytics/internal/errors"
	"goanalytics/internal/migration"
)

// datasetRow mirrors one analytics_datasets row
type datasetRow struct {
	Name          string         `db:"name"`
	DocumentCount int            `db:"document_count"`
	NumericFields pq.StringArray `db:"numeric_fields"`
	SampleFields  pq.StringArray `db:"sample_fields"`
}

func (r datasetRow) descriptor() analysis.DatasetDescriptor {
	return analysis.DatasetDescriptor{
		Name:          r.Name,
		DocumentCount: r.DocumentCount,
		NumericFields: append([]string{}, r.NumericFields...),
		SampleFields:  append([]string{}, r.SampleFields...),
	}
}

func rowFor(ds analysis.DatasetDescriptor) datasetRow {
	return datasetRow{
		Name:          ds.Name,
		DocumentCount: max(ds.DocumentCount, 0),
		NumericFields: pq.StringArray(append([]string{}, ds.NumericFields...)),
		SampleFields:  pq.StringArray(append([]string{}, ds.SampleFields...)),
	}
}

// DatasetCatalog implements ports.DatasetCatalog over the analytics_datasets table
type DatasetCatalog struct {
	db *sqlx.DB
}

// NewDatasetCatalog creates a catalog backed by db
func NewDatasetCatalog(db *sqlx.DB) *DatasetCatalog {
	return &DatasetCatalog{db: db}
}

// EnsureSchema runs the catalog migrations
func (c *DatasetCatalog) EnsureSchema(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, c.db)
}

// ListDatasets returns datasets in insertion order
func (c *DatasetCatalog) ListDatasets(ctx context.Context) ([]analysis.DatasetDescriptor, error) {
	query := `SELECT name, document_count, numeric_fields, sample_fields
	FROM analytics_datasets
	ORDER BY position`

	var rows []datasetRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.CatalogError("postgres", fmt.Errorf("failed to query datasets: %w", err))
	}

	datasets := make([]analysis.DatasetDescriptor, 0, len(rows))
	for _, r := range rows {
		datasets = append(datasets, r.descriptor())
	}
	return datasets, nil
}

// Upsert inserts or replaces dataset descriptors, keeping each name's original position
func (c *DatasetCatalog) Upsert(ctx context.Context, datasets ...analysis.DatasetDescriptor) error {
	query := `INSERT INTO analytics_datasets (name, document_count, numeric_fields, sample_fields)
	VALUES (:name, :document_count, :numeric_fields, :sample_fields)
	ON CONFLICT (name) DO UPDATE SET
		document_count = EXCLUDED.document_count,
		numeric_fields = EXCLUDED.numeric_fields,
		sample_fields  = EXCLUDED.sample_fields,
		updated_at     = NOW()`

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, ds := range datasets {
		if ds.Name == "" {
			return apperrors.InvalidInput("dataset name is required")
		}
		if _, err := tx.NamedExecContext(ctx, query, rowFor(ds)); err != nil {
			return apperrors.DatabaseError(fmt.Sprintf("failed to upsert dataset %s", ds.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit datasets", err)
	}
	return nil
}
