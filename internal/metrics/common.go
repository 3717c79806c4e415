package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Named robustness metrics. Each is a fixed composition of a stage-1,
// stage-2 and stage-3 transform; the function wrappers below bind the
// parameters each metric cares about.
//
// The metrics follow McPhail et al. (2018), "Robustness metrics: How
// are they calculated, when should they be used and why do they give
// different results?".
var (
	maximinMetric = Metric{T1: T1Identity, T2: T2WorstCase, T3: T3FSum}
	maximaxMetric = Metric{T1: T1Identity, T2: T2BestCase, T3: T3FSum}
	hurwiczMetric = Metric{T1: T1Identity, T2: T2WorstAndBestCases, T3: T3FWSum}
	laplaceMetric = Metric{T1: T1Identity, T2: T2AllScenarios, T3: T3FMean}

	minimaxRegretMetric    = Metric{T1: T1RegretFromBestDA, T2: T2WorstCase, T3: T3FSum}
	percentileRegretMetric = Metric{T1: T1RegretFromBestDA, T2: T2SelectPercentiles, T3: T3FSum}

	meanVarianceMetric          = Metric{T1: T1Identity, T2: T2AllScenarios, T3: T3FMeanVariance}
	undesirableDeviationsMetric = Metric{T1: T1RegretFromMedian, T2: T2WorstHalf, T3: T3FSum}

	percentileSkewMetric     = Metric{T1: T1Identity, T2: T2SelectPercentiles, T3: T3FSkew}
	percentileKurtosisMetric = Metric{T1: T1Identity, T2: T2SelectPercentiles, T3: T3FKurtosis}

	starrsDomainMetric = Metric{T1: T1Satisfice, T2: T2AllScenarios, T3: T3FMean}
)

// Maximin assumes the worst-case scenario occurs (Wald).
func Maximin(f *mat.Dense, maximise bool) (R, error) {
	return maximinMetric.Calc(f, Params{Maximise: maximise})
}

// Maximax assumes the best-case scenario occurs.
func Maximax(f *mat.Dense, maximise bool) (R, error) {
	return maximaxMetric.Calc(f, Params{Maximise: maximise})
}

// Hurwicz weights the worst case by alpha and the best case by
// 1-alpha.
func Hurwicz(f *mat.Dense, maximise bool, alpha float64) (R, error) {
	p := Params{Maximise: maximise}
	p.T3.Weights = []float64{alpha, 1 - alpha}
	return hurwiczMetric.Calc(f, p)
}

// Laplace treats every scenario as equally likely and takes the mean.
func Laplace(f *mat.Dense, maximise bool) (R, error) {
	return laplaceMetric.Calc(f, Params{Maximise: maximise})
}

// MinimaxRegret scores each alternative by its worst regret relative
// to the best alternative per scenario (Savage).
func MinimaxRegret(f *mat.Dense, maximise bool) (R, error) {
	return minimaxRegretMetric.Calc(f, Params{Maximise: maximise})
}

// PercentileRegret scores each alternative by a chosen percentile of
// its regret rather than the worst.
func PercentileRegret(f *mat.Dense, maximise bool, percentile float64) (R, error) {
	p := Params{Maximise: maximise}
	p.T2.Percentiles = []float64{percentile}
	return percentileRegretMetric.Calc(f, p)
}

// MeanVariance trades expected performance against its spread.
func MeanVariance(f *mat.Dense, maximise bool) (R, error) {
	return meanVarianceMetric.Calc(f, Params{Maximise: maximise})
}

// UndesirableDeviations penalises only the worse-than-median half of
// the regret-from-median distribution.
func UndesirableDeviations(f *mat.Dense, maximise bool) (R, error) {
	return undesirableDeviationsMetric.Calc(f, Params{Maximise: maximise})
}

// PercentileSkew measures whether performance is skewed towards the
// good or the bad tail, from the (p10, p50, p90) percentiles.
func PercentileSkew(f *mat.Dense, maximise bool) (R, error) {
	p := Params{Maximise: maximise}
	p.T2.Percentiles = []float64{0.1, 0.5, 0.9}
	return percentileSkewMetric.Calc(f, p)
}

// PercentileKurtosis measures the peakedness of the performance
// distribution from the (p10, p25, p75, p90) percentiles.
func PercentileKurtosis(f *mat.Dense, maximise bool) (R, error) {
	p := Params{Maximise: maximise}
	p.T2.Percentiles = []float64{0.1, 0.25, 0.75, 0.9}
	return percentileKurtosisMetric.Calc(f, p)
}

// StarrsDomain scores each alternative by the proportion of scenarios
// meeting a performance threshold.
func StarrsDomain(f *mat.Dense, maximise bool, threshold Ref, acceptEqual bool) (R, error) {
	p := Params{Maximise: maximise}
	p.T1.Threshold = &threshold
	p.T1.AcceptEqual = acceptEqual
	return starrsDomainMetric.Calc(f, p)
}

// Definition pairs a composed metric with the default parameters its
// composition expects. Callers overlay per-call parameters on top of
// Defaults before Calc.
type Definition struct {
	Metric   Metric
	Defaults Params
}

var registry = map[string]Definition{
	"maximin":        {Metric: maximinMetric},
	"maximax":        {Metric: maximaxMetric},
	"hurwicz":        {Metric: hurwiczMetric, Defaults: Params{T3: T3Params{Weights: []float64{0.5, 0.5}}}},
	"laplace":        {Metric: laplaceMetric},
	"minimax_regret": {Metric: minimaxRegretMetric},
	"percentile_regret": {
		Metric:   percentileRegretMetric,
		Defaults: Params{T2: T2Params{Percentiles: []float64{0.1}}},
	},
	"mean_variance":          {Metric: meanVarianceMetric},
	"undesirable_deviations": {Metric: undesirableDeviationsMetric},
	"percentile_skew": {
		Metric:   percentileSkewMetric,
		Defaults: Params{T2: T2Params{Percentiles: []float64{0.1, 0.5, 0.9}}},
	},
	"percentile_kurtosis": {
		Metric:   percentileKurtosisMetric,
		Defaults: Params{T2: T2Params{Percentiles: []float64{0.1, 0.25, 0.75, 0.9}}},
	},
	"starrs_domain": {
		Metric:   starrsDomainMetric,
		Defaults: Params{T1: T1Params{AcceptEqual: true}},
	},
}

// Lookup resolves a named metric definition.
func Lookup(name string) (Definition, bool) {
	def, ok := registry[name]
	return def, ok
}

// Names lists the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var t1ByName = map[string]T1Func{
	"identity":            T1Identity,
	"regret_from_best_da": T1RegretFromBestDA,
	"regret_from_values":  T1RegretFromValues,
	"regret_from_median":  T1RegretFromMedian,
	"satisficing_regret":  T1SatisficingRegret,
	"satisfice":           T1Satisfice,
}

var t2ByName = map[string]T2Func{
	"all_scenarios":        T2AllScenarios,
	"worst_case":           T2WorstCase,
	"best_case":            T2BestCase,
	"worst_and_best_cases": T2WorstAndBestCases,
	"worst_half":           T2WorstHalf,
	"select_percentiles":   T2SelectPercentiles,
}

var t3ByName = map[string]T3Func{
	"f_identity":      T3FIdentity,
	"f_mean":          T3FMean,
	"f_sum":           T3FSum,
	"f_range":         T3FRange,
	"f_variance":      T3FVariance,
	"f_mean_variance": T3FMeanVariance,
	"f_w_sum":         T3FWSum,
	"f_skew":          T3FSkew,
	"f_kurtosis":      T3FKurtosis,
}

// Compose builds a custom metric from stage names, so compositions can
// be declared as data by the CLI and API.
func Compose(t1, t2, t3 string) (Metric, error) {
	f1, ok := t1ByName[t1]
	if !ok {
		return Metric{}, fmt.Errorf("metrics: unknown stage-1 transform %q", t1)
	}
	f2, ok := t2ByName[t2]
	if !ok {
		return Metric{}, fmt.Errorf("metrics: unknown stage-2 transform %q", t2)
	}
	f3, ok := t3ByName[t3]
	if !ok {
		return Metric{}, fmt.Errorf("metrics: unknown stage-3 transform %q", t3)
	}
	return Metric{T1: f1, T2: f2, T3: f3}, nil
}
