package study

import (
	"time"

	"github.com/google/uuid"
)

// Record is one observed customer service event
type Record struct {
	Date       time.Time `json:"fecha"`
	Period     Group     `json:"periodo"`
	ServiceMin float64   `json:"tiempo_atencion_min"`
	TimeSlot   string    `json:"franja_horaria"`
	Weekday    string    `json:"dia_semana"`
	Server     string    `json:"servidor"`
}

// SimulationParams are the generation parameters of an ingest request
type SimulationParams struct {
	NBefore    int     `json:"n_before" binding:"required,gt=0"`
	NAfter     int     `json:"n_after" binding:"required,gt=0"`
	BeforeMean float64 `json:"before_mean" binding:"required,gt=0"`
	AfterMean  float64 `json:"after_mean" binding:"required,gt=0"`
	BeforeStd  float64 `json:"before_std" binding:"required,gt=0"`
	AfterStd   float64 `json:"after_std" binding:"required,gt=0"`
	Seed       *int64  `json:"seed,omitempty"`
}

// DefaultSimulationParams mirrors the reference cafeteria scenario
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		NBefore:    100,
		NAfter:     100,
		BeforeMean: 8.5,
		AfterMean:  6.2,
		BeforeStd:  2.1,
		AfterStd:   1.5,
	}
}

// Dataset is the current before/after pair held by the dataset store.
// It is treated as immutable once stored.
type Dataset struct {
	ID            uuid.UUID         `json:"id"`
	Before        Sample            `json:"-"`
	After         Sample            `json:"-"`
	BeforeRecords []Record          `json:"-"`
	AfterRecords  []Record          `json:"-"`
	Params        *SimulationParams `json:"parameters,omitempty"`
	Seed          *int64            `json:"seed,omitempty"`
	EffectiveSeed int64             `json:"effective_seed"`
	Source        string            `json:"source"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Records returns both groups' records, before first
func (d *Dataset) Records() []Record {
	out := make([]Record, 0, len(d.BeforeRecords)+len(d.AfterRecords))
	out = append(out, d.BeforeRecords...)
	return append(out, d.AfterRecords...)
}

// DatasetFromRecords splits records by period into a dataset.
// Used when a dataset comes from a file rather than a simulation.
func DatasetFromRecords(records []Record, source string) (*Dataset, error) {
	var beforeRecs, afterRecs []Record
	var beforeVals, afterVals []float64
	for _, r := range records {
		switch r.Period {
		case GroupBefore:
			beforeRecs = append(beforeRecs, r)
			beforeVals = append(beforeVals, r.ServiceMin)
		case GroupAfter:
			afterRecs = append(afterRecs, r)
			afterVals = append(afterVals, r.ServiceMin)
		}
	}

	before, err := NewSample(GroupBefore, beforeVals)
	if err != nil {
		return nil, err
	}
	after, err := NewSample(GroupAfter, afterVals)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		ID:            uuid.New(),
		Before:        before,
		After:         after,
		BeforeRecords: beforeRecs,
		AfterRecords:  afterRecs,
		Source:        source,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
