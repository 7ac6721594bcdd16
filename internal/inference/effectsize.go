package inference

import (
	"math"

	"gokaizen/domain/study"
)

// CohensD computes the standardized mean difference (before minus after)
// over the pooled standard deviation. A zero pooled standard deviation gives
// d = 0 and no_change with DegenerateVariance set.
func CohensD(before, after study.Sample) (study.CohensDResult, error) {
	if err := requireGroupSize("cohen's d", before, after); err != nil {
		return study.CohensDResult{}, err
	}

	n1 := float64(before.Len())
	n2 := float64(after.Len())
	mean1, var1 := meanVar(before.Raw())
	mean2, var2 := meanVar(after.Raw())

	pooled := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooled == 0 {
		return study.CohensDResult{
			CohensD:                  0,
			PooledStd:                0,
			EffectSizeInterpretation: study.EffectNegligible,
			Direction:                study.DirectionNoChange,
			DegenerateVariance:       true,
		}, nil
	}

	d := (mean1 - mean2) / pooled
	return study.CohensDResult{
		CohensD:                  d,
		PooledStd:                pooled,
		EffectSizeInterpretation: ClassifyEffect(d),
		Direction:                classifyDirection(d),
	}, nil
}

// ClassifyEffect buckets |d| with the conventional 0.2/0.5/0.8 boundaries
func ClassifyEffect(d float64) study.EffectSize {
	abs := math.Abs(d)
	switch {
	case abs < study.EffectSmallThreshold:
		return study.EffectNegligible
	case abs < study.EffectMediumThreshold:
		return study.EffectSmall
	case abs < study.EffectLargeThreshold:
		return study.EffectMedium
	default:
		return study.EffectLarge
	}
}

func classifyDirection(d float64) study.Direction {
	switch {
	case d > study.DirectionTolerance:
		return study.DirectionImprovement
	case d < -study.DirectionTolerance:
		return study.DirectionDeterioration
	default:
		return study.DirectionNoChange
	}
}
