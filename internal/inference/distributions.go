package inference

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// studentsTTwoSided returns P(|T| >= |t|) for T ~ t(df).
// Evaluated on the lower tail so large |t| keeps precision and the result
// is invariant to the sign of t.
func studentsTTwoSided(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1.0
	}
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(-math.Abs(t))
	return math.Min(p, 1.0)
}

// studentsTQuantile returns the two-sided critical value for alpha
func studentsTQuantile(alpha, df float64) float64 {
	if df <= 0 {
		return math.NaN()
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1.0 - alpha/2.0)
}

// fSurvival computes the upper-tail p-value of an F statistic
func fSurvival(f, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) {
		return 1.0
	}
	return 1 - distuv.F{D1: df1, D2: df2}.CDF(f)
}

// chiSquareSurvival computes the upper-tail p-value of a chi-square statistic
func chiSquareSurvival(x, k float64) float64 {
	if k <= 0 || math.IsNaN(x) {
		return 1.0
	}
	return 1 - distuv.ChiSquared{K: k}.CDF(x)
}

func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// normalSurvival is P(X > x) for X ~ N(mu, sigma)
func normalSurvival(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(x)
}
