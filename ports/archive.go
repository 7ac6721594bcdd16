package ports

import (
	"context"

	"gokaizen/domain/study"

	"github.com/google/uuid"
)

// DatasetArchive persists the history of ingested datasets and their reports
type DatasetArchive interface {
	SaveDataset(ctx context.Context, ds *study.Dataset) error
	SaveReport(ctx context.Context, datasetID uuid.UUID, report *study.AnalysisReport) error

	// ListDatasets returns the most recent datasets first
	ListDatasets(ctx context.Context, limit int) ([]study.ArchivedDataset, error)
}
