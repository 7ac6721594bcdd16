package inference

import (
	"gokaizen/domain/study"

	"github.com/montanaflynn/stats"
)

// LeveneTest checks equality of variances using absolute deviations from
// each group's median (Brown-Forsythe). When every deviation is zero the
// statistic is undefined and the result is W = 0, p = 1 with
// DegenerateVariance set.
func LeveneTest(before, after study.Sample) (study.LeveneResult, error) {
	if err := requireGroupSize("levene test", before, after); err != nil {
		return study.LeveneResult{}, err
	}

	groups := [][]float64{before.Raw(), after.Raw()}
	k := float64(len(groups))

	deviations := make([][]float64, len(groups))
	groupMeans := make([]float64, len(groups))
	total := 0.0
	totalN := 0.0
	for i, g := range groups {
		median, _ := stats.Median(g)
		dev := make([]float64, len(g))
		sum := 0.0
		for j, v := range g {
			d := v - median
			if d < 0 {
				d = -d
			}
			dev[j] = d
			sum += d
		}
		deviations[i] = dev
		groupMeans[i] = sum / float64(len(g))
		total += sum
		totalN += float64(len(g))
	}
	grandMean := total / totalN

	between := 0.0
	within := 0.0
	for i, dev := range deviations {
		diff := groupMeans[i] - grandMean
		between += float64(len(dev)) * diff * diff
		for _, d := range dev {
			within += (d - groupMeans[i]) * (d - groupMeans[i])
		}
	}

	if within == 0 {
		return study.LeveneResult{
			Statistic:          0,
			PValue:             1.0,
			EqualVariances:     true,
			DegenerateVariance: true,
		}, nil
	}

	w := (totalN - k) / (k - 1) * between / within
	p := clamp01(fSurvival(w, k-1, totalN-k))
	return study.LeveneResult{
		Statistic:      w,
		PValue:         p,
		EqualVariances: p >= study.SignificanceLevel,
	}, nil
}
