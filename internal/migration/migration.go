package migration

import (
	"context"

	"goanalytics/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles the dataset catalog schema
type MigrationRunner struct {
	version string
	steps   []step
}

type step struct {
	name string
	sql  string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
		steps: []step{
			{"create analytics_datasets table", createDatasetsTable},
			{"add analytics_datasets columns", addDatasetsColumns},
			{"create indexes", createIndexes},
		},
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps lists the migration step names in execution order
func (r *MigrationRunner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.DatabaseError("failed to "+s.name, err)
		}
	}
	return nil
}

const createDatasetsTable = `
	CREATE TABLE IF NOT EXISTS analytics_datasets (
		name TEXT PRIMARY KEY,
		document_count INTEGER NOT NULL DEFAULT 0 CHECK (document_count >= 0),
		numeric_fields TEXT[] NOT NULL DEFAULT '{}',
		sample_fields TEXT[] NOT NULL DEFAULT '{}'
	)
`

// Tables created before ordering and timestamps existed get the columns added in place
const addDatasetsColumns = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'analytics_datasets' AND column_name = 'position'
		) THEN
			ALTER TABLE analytics_datasets ADD COLUMN position SERIAL;
		END IF;

		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'analytics_datasets' AND column_name = 'updated_at'
		) THEN
			ALTER TABLE analytics_datasets ADD COLUMN updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW();
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_analytics_datasets_position ON analytics_datasets(position)
`
