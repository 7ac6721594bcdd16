package inference

import (
	"fmt"
	"strings"

	"gokaizen/domain/study"
)

var effectLabels = map[study.EffectSize]string{
	study.EffectNegligible: "despreciable",
	study.EffectSmall:      "pequeño",
	study.EffectMedium:     "mediano",
	study.EffectLarge:      "grande",
}

// ExecutiveSummary renders the narrative for a report. It reads only the
// report's computed fields, so the same report always yields the same text.
// The output is plain text that is also valid markdown.
func ExecutiveSummary(r *study.AnalysisReport) string {
	var b strings.Builder
	impact := r.Impact
	effect := effectLabels[r.CohensD.EffectSizeInterpretation]

	b.WriteString("## RESULTADOS DEL ANÁLISIS KAIZEN\n\n")

	improved := impact.StatisticallySig && impact.AbsoluteReductionMin > 0
	if improved {
		if impact.PercentReduction != nil {
			fmt.Fprintf(&b, "**MEJORA CONFIRMADA:** Se logró una reducción del %.1f%% en el tiempo de atención.\n\n", *impact.PercentReduction)
		} else {
			fmt.Fprintf(&b, "**MEJORA CONFIRMADA:** Se logró una reducción de %.2f minutos en el tiempo de atención.\n\n", impact.AbsoluteReductionMin)
		}

		b.WriteString("### EVIDENCIA ESTADÍSTICA\n\n")
		fmt.Fprintf(&b, "- Reducción promedio: %.2f minutos por cliente\n", impact.AbsoluteReductionMin)
		fmt.Fprintf(&b, "- Significancia estadística: p-value = %.4f\n", r.WelchTTest.PValue)
		fmt.Fprintf(&b, "- Tamaño del efecto: %s (Cohen's d = %.3f)\n\n", effect, r.CohensD.CohensD)

		b.WriteString("### IMPACTO DE NEGOCIO\n\n")
		fmt.Fprintf(&b, "- Cada cliente ahorra %.2f minutos\n", impact.TimeSavedPerCustomer)
		fmt.Fprintf(&b, "- La mejora es estadísticamente significativa con %d%% de confianza\n", study.ConfidenceLevelPct)
		b.WriteString("- La implementación Kaizen ha sido efectiva\n")
	} else {
		b.WriteString("**MEJORA NO CONFIRMADA:** Los datos no muestran evidencia estadística de mejora significativa.\n\n")

		b.WriteString("### EVIDENCIA ESTADÍSTICA\n\n")
		fmt.Fprintf(&b, "- Cambio promedio: %.2f minutos por cliente\n", impact.AbsoluteReductionMin)
		if impact.PercentReduction != nil {
			fmt.Fprintf(&b, "- Cambio porcentual: %.1f%%\n", *impact.PercentReduction)
		}
		fmt.Fprintf(&b, "- Significancia estadística: p-value = %.4f\n", r.WelchTTest.PValue)
		fmt.Fprintf(&b, "- Tamaño del efecto: %s (Cohen's d = %.3f)\n\n", effect, r.CohensD.CohensD)

		b.WriteString("### RECOMENDACIÓN\n\n")
		b.WriteString("- Revisar la implementación de las mejoras Kaizen\n")
		b.WriteString("- Considerar factores adicionales que puedan estar afectando los resultados\n")
		b.WriteString("- Recolectar más datos o extender el período de análisis\n")
	}

	notes := summaryNotes(r)
	if len(notes) > 0 {
		b.WriteString("\n### NOTAS\n\n")
		for _, note := range notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	return strings.TrimSpace(b.String())
}

func summaryNotes(r *study.AnalysisReport) []string {
	var notes []string
	for _, n := range []study.NormalityResult{r.Normality.Before, r.Normality.After} {
		if n.Valid && !n.IsNormal {
			notes = append(notes, fmt.Sprintf("La distribución del grupo %q no es compatible con normalidad (p = %.4f); interprete la prueba t con cautela", n.Group, n.PValue))
		}
	}
	if !r.Levene.DegenerateVariance && !r.Levene.EqualVariances {
		notes = append(notes, fmt.Sprintf("Las varianzas de ambos grupos difieren (Levene p = %.4f); la prueba de Welch no asume varianzas iguales", r.Levene.PValue))
	}
	for _, c := range r.Conditions {
		notes = append(notes, fmt.Sprintf("[%s] %s: %s", c.Code, c.Component, c.Message))
	}
	return notes
}
