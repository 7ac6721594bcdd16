package inference

import (
	"fmt"
	"math"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"
)

// MinGroupSize is the smallest group the two-sample procedures accept
const MinGroupSize = 2

// WelchTTest compares the group means without assuming equal variances.
// The first argument is the before group; swapping the arguments negates
// the t statistic and the stated direction but not the p-value.
//
// When both samples have zero variance the standard error is zero and t is
// undefined. The result is then t = 0, p = 1, not significant, with
// df = n1+n2-2 and DegenerateVariance set, whether or not the means differ.
func WelchTTest(before, after study.Sample) (study.WelchTTestResult, error) {
	if err := requireGroupSize("welch t-test", before, after); err != nil {
		return study.WelchTTestResult{}, err
	}

	n1 := float64(before.Len())
	n2 := float64(after.Len())
	mean1, var1 := meanVar(before.Raw())
	mean2, var2 := meanVar(after.Raw())

	alpha := study.SignificanceLevel
	meanDiff := mean1 - mean2
	q1 := var1 / n1
	q2 := var2 / n2
	se2 := q1 + q2

	result := study.WelchTTestResult{
		Alpha:          alpha,
		MeanDifference: meanDiff,
	}

	if se2 == 0 {
		df := n1 + n2 - 2
		result.TStatistic = 0
		result.PValue = 1.0
		result.DegreesFreedom = df
		result.TCritical = studentsTQuantile(alpha, df)
		result.CILower = meanDiff
		result.CIUpper = meanDiff
		result.DegenerateVariance = true
		result.Interpretation = fmt.Sprintf(
			"La prueba t de Welch no está definida: ambos grupos tienen varianza cero (media %s %.2f, media %s %.2f); se reporta t=0 y p=1 por convención",
			before.Group, mean1, after.Group, mean2)
		return result, nil
	}

	se := math.Sqrt(se2)
	t := meanDiff / se
	df := se2 * se2 / (q1*q1/(n1-1) + q2*q2/(n2-1))
	p := studentsTTwoSided(t, df)
	tCritical := studentsTQuantile(alpha, df)

	result.TStatistic = t
	result.PValue = p
	result.DegreesFreedom = df
	result.TCritical = tCritical
	result.IsSignificant = p < alpha
	result.SEDifference = se
	result.CILower = meanDiff - tCritical*se
	result.CIUpper = meanDiff + tCritical*se
	result.Interpretation = interpretWelch(result, before.Group, after.Group)

	return result, nil
}

// interpretWelch states the observed direction from the first group to the
// second, names the lower-mean group, and gives the significance verdict.
func interpretWelch(r study.WelchTTestResult, first, second study.Group) string {
	change := "sin diferencia"
	lower := "ambos grupos tienen la misma media"
	switch {
	case r.MeanDifference > 0:
		change = "reducción"
		lower = fmt.Sprintf("el grupo %q tiene la media más baja", second)
	case r.MeanDifference < 0:
		change = "aumento"
		lower = fmt.Sprintf("el grupo %q tiene la media más baja", first)
	}

	if r.IsSignificant {
		return fmt.Sprintf("Hay evidencia estadísticamente significativa de %s en el tiempo de atención del grupo %q al grupo %q; %s (p=%.4f)",
			change, first, second, lower, r.PValue)
	}
	return fmt.Sprintf("No hay evidencia estadísticamente significativa de cambio en el tiempo de atención (%s observada de %.2f minutos del grupo %q al grupo %q; %s) (p=%.4f)",
		change, math.Abs(r.MeanDifference), first, second, lower, r.PValue)
}

func requireGroupSize(procedure string, samples ...study.Sample) error {
	for _, s := range samples {
		if s.Len() < MinGroupSize {
			return errors.InsufficientSampleSize(procedure, string(s.Group), s.Len(), MinGroupSize)
		}
	}
	return nil
}
