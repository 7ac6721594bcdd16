package dataset

import (
	"sync"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"

	"github.com/google/uuid"
)

// Status summarizes what the store currently holds
type Status struct {
	HasData       bool       `json:"has_data"`
	BeforeCount   int        `json:"before"`
	AfterCount    int        `json:"after"`
	DatasetID     *uuid.UUID `json:"dataset_id,omitempty"`
	Seed          *int64     `json:"seed,omitempty"`
	EffectiveSeed *int64     `json:"effective_seed,omitempty"`
}

// Store holds the single current dataset.
// Writers replace the pointer under the write lock; readers get the stored
// pointer, which is never mutated after Set.
type Store struct {
	mu      sync.RWMutex
	current *study.Dataset
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current dataset
func (s *Store) Set(ds *study.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ds
}

// Get returns the current dataset or NoDataAvailable
func (s *Store) Get() (*study.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, errors.NoDataAvailable()
	}
	return s.current, nil
}

// Clear empties the store
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Status reports presence and group sizes
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Status{}
	}

	id := s.current.ID
	effective := s.current.EffectiveSeed
	return Status{
		HasData:       true,
		BeforeCount:   s.current.Before.Len(),
		AfterCount:    s.current.After.Len(),
		DatasetID:     &id,
		Seed:          s.current.Seed,
		EffectiveSeed: &effective,
	}
}
