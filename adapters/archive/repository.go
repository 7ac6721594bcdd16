package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"
	"gokaizen/internal/migration"
	"gokaizen/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultHistoryLimit caps history listings when no limit is given
const DefaultHistoryLimit = 20

// MaxHistoryLimit is the largest page ListDatasets returns
const MaxHistoryLimit = 500

// Open connects to the archive database and applies the schema.
// driver is "postgres" or "sqlite3".
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to archive database", err)
	}

	if driver == "sqlite3" {
		// an in-memory sqlite database lives on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "archive migration failed")
	}

	return db, nil
}

// repository implements ports.DatasetArchive on sqlx
type repository struct {
	db *sqlx.DB
}

// NewRepository creates a dataset archive on an open database
func NewRepository(db *sqlx.DB) ports.DatasetArchive {
	return &repository{db: db}
}

type datasetRow struct {
	ID            string         `db:"id"`
	Source        string         `db:"source"`
	NBefore       int            `db:"n_before"`
	NAfter        int            `db:"n_after"`
	Seed          sql.NullInt64  `db:"seed"`
	EffectiveSeed int64          `db:"effective_seed"`
	Parameters    sql.NullString `db:"parameters"`
	CreatedAt     time.Time      `db:"created_at"`
	ReportCount   int            `db:"report_count"`
}

// SaveDataset records a newly ingested dataset
func (r *repository) SaveDataset(ctx context.Context, ds *study.Dataset) error {
	var params sql.NullString
	if ds.Params != nil {
		raw, err := json.Marshal(ds.Params)
		if err != nil {
			return errors.Wrap(err, "failed to marshal simulation parameters")
		}
		params = sql.NullString{String: string(raw), Valid: true}
	}

	var seed sql.NullInt64
	if ds.Seed != nil {
		seed = sql.NullInt64{Int64: *ds.Seed, Valid: true}
	}

	query := r.db.Rebind(`INSERT INTO kaizen_datasets (
		id, source, n_before, n_after, seed, effective_seed, parameters, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		ds.ID.String(), ds.Source, ds.Before.Len(), ds.After.Len(),
		seed, ds.EffectiveSeed, params, ds.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.DatabaseError("failed to archive dataset", err)
	}
	return nil
}

// SaveReport records an analysis report against its dataset
func (r *repository) SaveReport(ctx context.Context, datasetID uuid.UUID, report *study.AnalysisReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "failed to marshal analysis report")
	}

	query := r.db.Rebind(`INSERT INTO kaizen_reports (
		id, dataset_id, significant, cohens_d, report, created_at
	) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(), datasetID.String(), report.WelchTTest.IsSignificant,
		report.CohensD.CohensD, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return errors.DatabaseError("failed to archive analysis report", err)
	}
	return nil
}

// ListDatasets returns archived datasets, newest first
func (r *repository) ListDatasets(ctx context.Context, limit int) ([]study.ArchivedDataset, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := r.db.Rebind(`SELECT
		d.id, d.source, d.n_before, d.n_after, d.seed, d.effective_seed, d.parameters, d.created_at,
		(SELECT COUNT(*) FROM kaizen_reports k WHERE k.dataset_id = d.id) AS report_count
	FROM kaizen_datasets d
	ORDER BY d.created_at DESC
	LIMIT ?`)

	var rows []datasetRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.DatabaseError("failed to list archived datasets", err)
	}

	out := make([]study.ArchivedDataset, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (row datasetRow) toDomain() (study.ArchivedDataset, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return study.ArchivedDataset{}, errors.DatabaseError("archived dataset has an invalid id", err)
	}

	item := study.ArchivedDataset{
		ID:            id,
		Source:        row.Source,
		BeforeCount:   row.NBefore,
		AfterCount:    row.NAfter,
		EffectiveSeed: row.EffectiveSeed,
		ReportCount:   row.ReportCount,
		CreatedAt:     row.CreatedAt.UTC(),
	}
	if row.Seed.Valid {
		seed := row.Seed.Int64
		item.Seed = &seed
	}
	if row.Parameters.Valid && row.Parameters.String != "" {
		var params study.SimulationParams
		if err := json.Unmarshal([]byte(row.Parameters.String), &params); err != nil {
			return study.ArchivedDataset{}, errors.DatabaseError("archived parameters are not valid JSON", err)
		}
		item.Params = &params
	}
	return item, nil
}
