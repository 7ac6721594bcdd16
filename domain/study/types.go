package study

// ============================================================================
// THRESHOLDS
// ============================================================================

const (
	// SignificanceLevel is shared by the Welch test and the normality diagnostic
	SignificanceLevel = 0.05

	// ConfidenceLevelPct is reported when the Welch test is significant
	ConfidenceLevelPct = 95

	// Cohen's d magnitude buckets applied to |d|
	EffectSmallThreshold  = 0.2
	EffectMediumThreshold = 0.5
	EffectLargeThreshold  = 0.8

	// DirectionTolerance is the |d| at or below which direction is no_change
	DirectionTolerance = 1e-12
)

// EffectSize is the categorical bucket of |cohens_d|
type EffectSize string

const (
	EffectNegligible EffectSize = "negligible"
	EffectSmall      EffectSize = "small"
	EffectMedium     EffectSize = "medium"
	EffectLarge      EffectSize = "large"
)

// Direction of the change in mean service time
type Direction string

const (
	DirectionImprovement   Direction = "improvement"
	DirectionDeterioration Direction = "deterioration"
	DirectionNoChange      Direction = "no_change"
)

// NormalityMethod names the goodness-of-fit statistic used
type NormalityMethod string

const (
	MethodShapiroWilk NormalityMethod = "shapiro_wilk"
	MethodDAgostinoK2 NormalityMethod = "dagostino_k2"
)

// ============================================================================
// COMPONENT RESULTS
// ============================================================================

// DescriptiveStatistics summarizes one sample.
// When N == 1 the standard deviation is undefined: Std and Var are 0 and
// StdDefined is false.
type DescriptiveStatistics struct {
	N          int     `json:"n"`
	Mean       float64 `json:"media"`
	Median     float64 `json:"mediana"`
	Std        float64 `json:"std"`
	StdDefined bool    `json:"std_defined"`
	Var        float64 `json:"var"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Q25        float64 `json:"q25"`
	Q75        float64 `json:"q75"`
	IQR        float64 `json:"iqr"`
}

// NormalityResult is the goodness-of-fit diagnostic for one sample.
// A failed diagnostic has Valid == false and carries the condition code.
type NormalityResult struct {
	Group     Group           `json:"group"`
	Method    NormalityMethod `json:"method,omitempty"`
	N         int             `json:"n"`
	Statistic float64         `json:"statistic"`
	PValue    float64         `json:"p_value"`
	IsNormal  bool            `json:"is_normal"`
	Valid     bool            `json:"valid"`
	ErrorCode string          `json:"error_code,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// WelchTTestResult is the outcome of the unequal-variance two-sample t-test
type WelchTTestResult struct {
	TStatistic         float64 `json:"t_statistic"`
	PValue             float64 `json:"p_value"`
	DegreesFreedom     float64 `json:"degrees_freedom"`
	TCritical          float64 `json:"t_critical"`
	IsSignificant      bool    `json:"is_significant"`
	Alpha              float64 `json:"alpha"`
	MeanDifference     float64 `json:"mean_difference"`
	SEDifference       float64 `json:"se_difference"`
	CILower            float64 `json:"ci_lower"`
	CIUpper            float64 `json:"ci_upper"`
	DegenerateVariance bool    `json:"degenerate_variance"`
	Interpretation     string  `json:"interpretation"`
}

// CohensDResult is the standardized mean difference (before minus after)
type CohensDResult struct {
	CohensD                  float64    `json:"cohens_d"`
	PooledStd                float64    `json:"pooled_std"`
	EffectSizeInterpretation EffectSize `json:"effect_size_interpretation"`
	Direction                Direction  `json:"direction"`
	DegenerateVariance       bool       `json:"degenerate_variance"`
}

// LeveneResult is the Brown-Forsythe (median-centred Levene) variance test
type LeveneResult struct {
	Statistic          float64 `json:"statistic"`
	PValue             float64 `json:"p_value"`
	EqualVariances     bool    `json:"equal_variances"`
	DegenerateVariance bool    `json:"degenerate_variance"`
}

// BusinessImpact translates the statistics into operational terms.
// PercentReduction is nil when the before mean is zero.
type BusinessImpact struct {
	AbsoluteReductionMin float64    `json:"reduccion_absoluta_min"`
	PercentReduction     *float64   `json:"reduccion_porcentual"`
	StatisticallySig     bool       `json:"significancia_estadistica"`
	TimeSavedPerCustomer float64    `json:"tiempo_ahorrado_por_cliente"`
	EffectMagnitude      EffectSize `json:"magnitud_efecto"`
	ChangeDirection      Direction  `json:"direccion_cambio"`
	ResultConfidencePct  *int       `json:"confianza_resultado"`
}

// Condition records a named condition resolved by a documented fallback
type Condition struct {
	Code      string `json:"code"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// GroupPair holds one value per group
type GroupPair[T any] struct {
	Before T `json:"antes"`
	After  T `json:"despues"`
}

// AnalysisReport is the immutable output of one analysis run.
// It holds no timestamps or identifiers so equal input gives equal reports.
type AnalysisReport struct {
	Descriptive      GroupPair[DescriptiveStatistics] `json:"estadisticas_descriptivas"`
	Normality        GroupPair[NormalityResult]       `json:"normalidad"`
	WelchTTest       WelchTTestResult                 `json:"welch_ttest"`
	CohensD          CohensDResult                    `json:"cohens_d"`
	Levene           LeveneResult                     `json:"levene_test"`
	Impact           BusinessImpact                   `json:"impacto_negocio"`
	Conditions       []Condition                      `json:"condiciones"`
	ExecutiveSummary string                           `json:"resumen_ejecutivo"`
}
