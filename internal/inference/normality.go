package inference

import (
	"math"
	"sort"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"

	"github.com/montanaflynn/stats"
)

const (
	// MinNormalitySize is the smallest sample the diagnostic accepts
	MinNormalitySize = 3

	// ShapiroWilkMaxSize is the largest n for which Royston's approximation holds;
	// larger samples use D'Agostino's K^2
	ShapiroWilkMaxSize = 5000

	// dagostinoMinSize is the smallest n for which the K^2 transforms are defined
	dagostinoMinSize = 8
)

// Royston (1995) polynomial coefficients, algorithm AS R94
var (
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// TestNormality runs the goodness-of-fit diagnostic on one sample.
// Returns InsufficientSampleSize for n < 3 and DegenerateVariance when all
// observations are equal.
func TestNormality(s study.Sample) (study.NormalityResult, error) {
	result := study.NormalityResult{Group: s.Group, N: s.Len()}

	if s.Len() < MinNormalitySize {
		return result, errors.InsufficientSampleSize("normality diagnostic", string(s.Group), s.Len(), MinNormalitySize)
	}

	sorted := s.Values()
	sort.Float64s(sorted)
	if sorted[len(sorted)-1]-sorted[0] == 0 {
		return result, errors.DegenerateVariance("normality diagnostic is undefined for a constant sample")
	}

	var w, p float64
	if s.Len() <= ShapiroWilkMaxSize {
		result.Method = study.MethodShapiroWilk
		w, p = shapiroWilk(sorted)
	} else {
		result.Method = study.MethodDAgostinoK2
		w, p = dagostinoK2(sorted)
	}

	result.Statistic = w
	result.PValue = p
	result.IsNormal = p >= study.SignificanceLevel
	result.Valid = true
	return result, nil
}

// shapiroWilk computes W and its p-value for an ascending sample with 3 <= n <= 5000
func shapiroWilk(x []float64) (float64, float64) {
	n := len(x)
	an := float64(n)
	nn2 := n / 2

	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
	} else {
		m := make([]float64, nn2)
		an25 := an + 0.25
		summ2 := 0.0
		for i := 0; i < nn2; i++ {
			m[i] = normalQuantile((float64(i+1) - 0.375) / an25)
			summ2 += m[i] * m[i]
		}
		summ2 *= 2
		ssumm2 := math.Sqrt(summ2)
		rsn := 1 / math.Sqrt(an)

		a1 := poly(swC1, rsn) - m[0]/ssumm2
		first := 1
		var fac float64
		if n > 5 {
			first = 2
			a2 := -m[1]/ssumm2 + poly(swC2, rsn)
			fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
			a[1] = a2
		} else {
			fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
		}
		a[0] = a1
		for i := first; i < nn2; i++ {
			a[i] = -m[i] / fac
		}
	}

	mean, _ := stats.Mean(x)
	ssq := 0.0
	for _, v := range x {
		ssq += (v - mean) * (v - mean)
	}
	num := 0.0
	for i := 0; i < nn2; i++ {
		num += a[i] * (x[n-1-i] - x[i])
	}
	w := math.Min(num*num/ssq, 1.0)

	if n == 3 {
		const pi6 = 6 / math.Pi
		const stqr = math.Pi / 3
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return w, clamp01(p)
	}

	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return w, 0
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		lnN := math.Log(an)
		mu = poly(swC5, lnN)
		sigma = math.Exp(poly(swC6, lnN))
	}

	return w, clamp01(normalSurvival(y, mu, sigma))
}

// dagostinoK2 computes the D'Agostino-Pearson omnibus statistic from the
// biased skewness and kurtosis.
func dagostinoK2(x []float64) (float64, float64) {
	n := float64(len(x))
	if len(x) < dagostinoMinSize {
		return 0, 1.0
	}

	mean, _ := stats.Mean(x)
	var m2, m3, m4 float64
	for _, v := range x {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n

	// Skewness transform to Z1
	b1 := m3 / math.Pow(m2, 1.5)
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := (3 * (n*n + 27*n - 70) * (n + 1) * (n + 3)) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2 (Anscombe-Glynn)
	b2 := m4 / (m2 * m2)
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	xk := (b2 - e) / math.Sqrt(v)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	den := 1 + xk*math.Sqrt(2/(a-4))
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(den)), den)
	z2 := (term1 - term2) / math.Sqrt(2/(9*a))

	k2 := z1*z1 + z2*z2
	return k2, clamp01(chiSquareSurvival(k2, 2))
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

func clamp01(p float64) float64 {
	if math.IsNaN(p) {
		return 1.0
	}
	return math.Max(0, math.Min(1, p))
}
