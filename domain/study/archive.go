package study

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedDataset is one past ingest as recorded in the archive
type ArchivedDataset struct {
	ID            uuid.UUID         `json:"id"`
	Source        string            `json:"source"`
	BeforeCount   int               `json:"n_before"`
	AfterCount    int               `json:"n_after"`
	Seed          *int64            `json:"seed,omitempty"`
	EffectiveSeed int64             `json:"effective_seed"`
	Params        *SimulationParams `json:"parameters,omitempty"`
	ReportCount   int               `json:"report_count"`
	CreatedAt     time.Time         `json:"created_at"`
}
