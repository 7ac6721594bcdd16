package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ingestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gokaizen_ingests_total",
		Help: "Dataset ingests by source and outcome",
	}, []string{"source", "outcome"})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gokaizen_analyses_total",
		Help: "Analysis runs by outcome",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gokaizen_analysis_duration_seconds",
		Help:    "Duration of a full before/after analysis",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	conditionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gokaizen_conditions_total",
		Help: "Conditions recorded in analysis reports by code",
	}, []string{"code"})

	archiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gokaizen_archive_errors_total",
		Help: "Failed best-effort writes to the dataset archive",
	})
)

// RecordIngest counts one ingest attempt
func RecordIngest(source string, err error) {
	ingestsTotal.WithLabelValues(source, outcome(err)).Inc()
}

// RecordAnalysis counts one analysis and observes its duration
func RecordAnalysis(started time.Time, err error) {
	analysesTotal.WithLabelValues(outcome(err)).Inc()
	analysisDuration.Observe(time.Since(started).Seconds())
}

// RecordCondition counts a report condition
func RecordCondition(code string) {
	conditionsTotal.WithLabelValues(code).Inc()
}

// RecordArchiveError counts a failed archive write
func RecordArchiveError() {
	archiveErrors.Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
