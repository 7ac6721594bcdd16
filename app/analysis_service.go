package app

import (
	"context"
	"time"

	"gokaizen/domain/study"
	"gokaizen/internal/dataset"
	"gokaizen/internal/errors"
	"gokaizen/internal/inference"
	"gokaizen/internal/logging"
	"gokaizen/internal/metrics"
	"gokaizen/internal/simulation"
	"gokaizen/ports"

	"github.com/rs/zerolog"
)

// AnalyzeOptions are rendering flags accepted by Analyze. They do not change
// the report and are echoed back to the caller.
type AnalyzeOptions struct {
	GeneratePlots   bool `json:"generate_plots"`
	CreateDashboard bool `json:"create_dashboard"`
}

// AnalysisResult pairs a report with the dataset it was computed from
type AnalysisResult struct {
	Report  *study.AnalysisReport
	Dataset *study.Dataset
	Options AnalyzeOptions
}

// AnalysisService handles ingest, analysis and reset of the current dataset
type AnalysisService struct {
	store     *dataset.Store
	generator *simulation.Generator
	engine    *inference.Engine
	archive   ports.DatasetArchive
	logger    zerolog.Logger
}

// NewAnalysisService creates the service. archive may be nil, which disables
// history.
func NewAnalysisService(store *dataset.Store, generator *simulation.Generator, archive ports.DatasetArchive) *AnalysisService {
	return &AnalysisService{
		store:     store,
		generator: generator,
		engine:    inference.NewEngine(),
		archive:   archive,
		logger:    logging.Component("analysis_service"),
	}
}

// Ingest validates params, generates a dataset and replaces the current one.
// On a validation error the store is left untouched.
func (s *AnalysisService) Ingest(ctx context.Context, params study.SimulationParams) (*study.Dataset, error) {
	ds, err := s.generator.Generate(params)
	metrics.RecordIngest(simulation.SourceSimulation, err)
	if err != nil {
		return nil, err
	}

	s.replace(ctx, ds)
	return ds, nil
}

// IngestRecords replaces the current dataset with one built from records
func (s *AnalysisService) IngestRecords(ctx context.Context, records []study.Record, source string) (*study.Dataset, error) {
	ds, err := study.DatasetFromRecords(records, source)
	metrics.RecordIngest(source, err)
	if err != nil {
		return nil, err
	}

	s.replace(ctx, ds)
	return ds, nil
}

func (s *AnalysisService) replace(ctx context.Context, ds *study.Dataset) {
	s.store.Set(ds)
	s.logger.Info().
		Str("dataset_id", ds.ID.String()).
		Str("source", ds.Source).
		Int("n_before", ds.Before.Len()).
		Int("n_after", ds.After.Len()).
		Int64("effective_seed", ds.EffectiveSeed).
		Msg("dataset ingested")

	if s.archive == nil {
		return
	}
	if err := s.archive.SaveDataset(ctx, ds); err != nil {
		metrics.RecordArchiveError()
		s.logger.Warn().Err(err).Str("dataset_id", ds.ID.String()).Msg("failed to archive dataset")
	}
}

// Analyze runs the full comparison on the current dataset.
// Returns NoDataAvailable when the store is empty.
func (s *AnalysisService) Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalysisResult, error) {
	started := time.Now()

	ds, err := s.store.Get()
	if err != nil {
		metrics.RecordAnalysis(started, err)
		return nil, err
	}

	report, err := s.engine.Run(ctx, ds.Before, ds.After)
	metrics.RecordAnalysis(started, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("dataset_id", ds.ID.String()).Msg("analysis failed")
		return nil, err
	}

	for _, c := range report.Conditions {
		metrics.RecordCondition(c.Code)
	}

	s.logger.Info().
		Str("dataset_id", ds.ID.String()).
		Bool("significant", report.WelchTTest.IsSignificant).
		Float64("cohens_d", report.CohensD.CohensD).
		Int("conditions", len(report.Conditions)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")

	if s.archive != nil {
		if err := s.archive.SaveReport(ctx, ds.ID, report); err != nil {
			metrics.RecordArchiveError()
			s.logger.Warn().Err(err).Str("dataset_id", ds.ID.String()).Msg("failed to archive report")
		}
	}

	return &AnalysisResult{Report: report, Dataset: ds, Options: opts}, nil
}

// Current returns the current dataset or NoDataAvailable
func (s *AnalysisService) Current() (*study.Dataset, error) {
	return s.store.Get()
}

// Status reports whether data is loaded and the group sizes
func (s *AnalysisService) Status() dataset.Status {
	return s.store.Status()
}

// Reset clears the current dataset. Archived history is kept.
func (s *AnalysisService) Reset() {
	s.store.Clear()
	s.logger.Info().Msg("dataset store cleared")
}

// History lists archived datasets, newest first
func (s *AnalysisService) History(ctx context.Context, limit int) ([]study.ArchivedDataset, error) {
	if s.archive == nil {
		return nil, errors.ArchiveDisabled()
	}
	return s.archive.ListDatasets(ctx, limit)
}

// ArchiveEnabled reports whether history is available
func (s *AnalysisService) ArchiveEnabled() bool {
	return s.archive != nil
}
