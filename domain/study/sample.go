package study

import (
	"fmt"
	"math"

	"gokaizen/internal/errors"
)

// Group labels one side of the before/after comparison
type Group string

const (
	GroupBefore Group = "antes"
	GroupAfter  Group = "despues"
)

// Sample is one group's ordered service-time observations (minutes).
// Values are copied on construction and must not be mutated afterwards.
type Sample struct {
	Group  Group
	values []float64
}

// NewSample validates and captures a group's observations
func NewSample(group Group, values []float64) (Sample, error) {
	if len(values) == 0 {
		return Sample{}, errors.InvalidParameter(fmt.Sprintf("sample %q is empty", group))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, errors.InvalidParameter(fmt.Sprintf("sample %q has a non-finite value at position %d", group, i))
		}
	}

	captured := make([]float64, len(values))
	copy(captured, values)
	return Sample{Group: group, values: captured}, nil
}

// MustSample is NewSample for fixtures; it panics on invalid input.
func MustSample(group Group, values []float64) Sample {
	s, err := NewSample(group, values)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of observations
func (s Sample) Len() int {
	return len(s.values)
}

// Values returns a copy of the observations
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Raw exposes the underlying slice for read-only numeric work inside the engine.
func (s Sample) Raw() []float64 {
	return s.values
}
