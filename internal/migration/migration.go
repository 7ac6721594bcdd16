package migration

import (
	"context"

	"gokaizen/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the archive schema. The DDL is limited to types
// and clauses both postgres and sqlite accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create kaizen_datasets table", err)
	}

	if err := r.createReportsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create kaizen_reports table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kaizen_datasets (
			id VARCHAR(36) PRIMARY KEY,
			source VARCHAR(32) NOT NULL,
			n_before INTEGER NOT NULL,
			n_after INTEGER NOT NULL,
			seed BIGINT,
			effective_seed BIGINT NOT NULL,
			parameters TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kaizen_reports (
			id VARCHAR(36) PRIMARY KEY,
			dataset_id VARCHAR(36) NOT NULL REFERENCES kaizen_datasets(id) ON DELETE CASCADE,
			significant BOOLEAN NOT NULL,
			cohens_d DOUBLE PRECISION NOT NULL,
			report TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_kaizen_datasets_created_at ON kaizen_datasets(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_kaizen_reports_dataset_id ON kaizen_reports(dataset_id)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}
