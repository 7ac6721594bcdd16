package inference

import (
	"context"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"

	"golang.org/x/sync/errgroup"
)

// Component names recorded on conditions
const (
	ComponentNormality = "normality"
	ComponentWelch     = "welch_ttest"
	ComponentCohensD   = "cohens_d"
	ComponentLevene    = "levene_test"
)

// Engine assembles an AnalysisReport from a before/after sample pair
type Engine struct{}

// NewEngine creates a new comparison engine
func NewEngine() *Engine {
	return &Engine{}
}

// Run computes the full report. Descriptive statistics come first; the two
// normality diagnostics run alongside the two-sample tests since neither
// reads the other's output; impact and narrative come last.
//
// A group with fewer than two observations fails the whole run with
// InsufficientSampleSize. Normality failures are recorded per group and do
// not abort the run.
func (e *Engine) Run(ctx context.Context, before, after study.Sample) (*study.AnalysisReport, error) {
	if err := requireGroupSize("before/after comparison", before, after); err != nil {
		return nil, err
	}

	report := &study.AnalysisReport{
		Descriptive: study.GroupPair[study.DescriptiveStatistics]{
			Before: Describe(before),
			After:  Describe(after),
		},
	}

	var normBefore, normAfter study.NormalityResult
	var normBeforeErr, normAfterErr error

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		normBefore, normBeforeErr = TestNormality(before)
		return nil
	})
	g.Go(func() error {
		normAfter, normAfterErr = TestNormality(after)
		return nil
	})
	g.Go(func() error {
		var err error
		if report.WelchTTest, err = WelchTTest(before, after); err != nil {
			return err
		}
		if report.CohensD, err = CohensD(before, after); err != nil {
			return err
		}
		report.Levene, err = LeveneTest(before, after)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "two-sample comparison failed")
	}

	report.Normality = study.GroupPair[study.NormalityResult]{
		Before: withFailure(normBefore, normBeforeErr),
		After:  withFailure(normAfter, normAfterErr),
	}
	report.Impact = SummarizeImpact(report.Descriptive.Before, report.Descriptive.After, report.WelchTTest, report.CohensD)
	report.Conditions = collectConditions(report)
	report.ExecutiveSummary = ExecutiveSummary(report)

	return report, nil
}

// withFailure marks a normality result as failed with the condition's code
func withFailure(result study.NormalityResult, err error) study.NormalityResult {
	if err == nil {
		return result
	}
	result.Valid = false
	result.Statistic = 0
	result.PValue = 0
	result.IsNormal = false
	result.ErrorCode = errors.GetCode(err)
	result.Error = err.Error()
	return result
}

// collectConditions lists every condition resolved by a documented fallback,
// in a fixed order.
func collectConditions(r *study.AnalysisReport) []study.Condition {
	conditions := make([]study.Condition, 0)

	for _, n := range []study.NormalityResult{r.Normality.Before, r.Normality.After} {
		if !n.Valid {
			conditions = append(conditions, study.Condition{
				Code:      n.ErrorCode,
				Component: ComponentNormality + "." + string(n.Group),
				Message:   n.Error,
			})
		}
	}
	if r.WelchTTest.DegenerateVariance {
		conditions = append(conditions, study.Condition{
			Code:      errors.CodeDegenerateVariance,
			Component: ComponentWelch,
			Message:   "standard error is zero; reported t=0, p=1, not significant",
		})
	}
	if r.CohensD.DegenerateVariance {
		conditions = append(conditions, study.Condition{
			Code:      errors.CodeDegenerateVariance,
			Component: ComponentCohensD,
			Message:   "pooled standard deviation is zero; reported d=0, no_change",
		})
	}
	if r.Levene.DegenerateVariance {
		conditions = append(conditions, study.Condition{
			Code:      errors.CodeDegenerateVariance,
			Component: ComponentLevene,
			Message:   "all deviations from the median are zero; reported W=0, p=1",
		})
	}

	return conditions
}
