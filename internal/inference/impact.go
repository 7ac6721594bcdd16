package inference

import (
	"gokaizen/domain/study"
)

// SummarizeImpact converts the statistical outputs into operational figures.
// The percentage reduction is left nil when the before mean is zero.
func SummarizeImpact(before, after study.DescriptiveStatistics, welch study.WelchTTestResult, cohen study.CohensDResult) study.BusinessImpact {
	reduction := before.Mean - after.Mean

	impact := study.BusinessImpact{
		AbsoluteReductionMin: reduction,
		StatisticallySig:     welch.IsSignificant,
		TimeSavedPerCustomer: reduction,
		EffectMagnitude:      cohen.EffectSizeInterpretation,
		ChangeDirection:      cohen.Direction,
	}

	if before.Mean != 0 {
		pct := reduction / before.Mean * 100
		impact.PercentReduction = &pct
	}

	if welch.IsSignificant {
		confidence := study.ConfidenceLevelPct
		impact.ResultConfidencePct = &confidence
	}

	return impact
}
