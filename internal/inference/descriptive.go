package inference

import (
	"math"
	"sort"

	"gokaizen/domain/study"

	"github.com/montanaflynn/stats"
)

// Describe computes summary statistics for one sample.
// A single observation has no sample standard deviation; Std and Var are
// then reported as 0 with StdDefined false.
func Describe(s study.Sample) study.DescriptiveStatistics {
	data := stats.Float64Data(s.Raw())

	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	sorted := s.Values()
	sort.Float64s(sorted)
	q25 := quantileLinear(sorted, 0.25)
	q75 := quantileLinear(sorted, 0.75)

	out := study.DescriptiveStatistics{
		N:      s.Len(),
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
		IQR:    q75 - q25,
	}

	if s.Len() >= 2 {
		_, variance := meanVar(data)
		out.Var = variance
		out.Std = math.Sqrt(variance)
		out.StdDefined = true
	}

	return out
}

// quantileLinear interpolates between closest ranks (numpy "linear").
// sorted must be ascending and non-empty.
func quantileLinear(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// meanVar returns the mean and the n-1 variance of a sample with n >= 2.
// A constant sample has exactly zero variance regardless of rounding in the mean.
func meanVar(data []float64) (float64, float64) {
	if isConstant(data) {
		return data[0], 0
	}
	mean, _ := stats.Mean(data)
	variance, _ := stats.SampleVariance(data)
	return mean, variance
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}
