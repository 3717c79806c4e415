package robustnessapi

import (
	"bytes"
	"fmt"
	"math"

	"github.com/bytedance/sonic"

	"github.com/rapidlabs/rapid/internal/evaluator"
	"github.com/rapidlabs/rapid/internal/metrics"
)

// Float is a float64 whose JSON form is null for NaN and Inf, which
// JSON numbers cannot represent. Robustness and similarity matrices
// legitimately contain them.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return sonic.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Float64Rows converts wire-format matrix rows back to plain values.
func Float64Rows(rows [][]Float) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		vals := make([]float64, len(row))
		for j, v := range row {
			vals[j] = float64(v)
		}
		out[i] = vals
	}
	return out
}

// EvaluateRequest carries a long-format performance table and the
// robustness metrics to evaluate against it.
type EvaluateRequest struct {
	Table   evaluator.Table          `json:"table"`
	Metrics map[string]MetricRequest `json:"metrics"`
}

// MetricRequest declares one robustness metric as data: either a
// registered named metric or a custom composition of stage names, plus
// the parameters the composition consumes.
type MetricRequest struct {
	// Metric names a registered metric (e.g. "maximin"). When empty,
	// T1/T2/T3 must name the stage transforms of a custom composition.
	Metric string `json:"metric,omitempty"`
	T1     string `json:"t1,omitempty"`
	T2     string `json:"t2,omitempty"`
	T3     string `json:"t3,omitempty"`

	// F is the performance column the metric reads.
	F        string `json:"f"`
	Maximise bool   `json:"maximise"`

	// ThresholdColumn injects a per-row threshold column from the
	// table; Threshold supplies a single scalar instead.
	ThresholdColumn string   `json:"threshold_column,omitempty"`
	Threshold       *float64 `json:"threshold,omitempty"`

	// Values supplies the per-scenario reference for regret-from-values
	// compositions.
	Values []float64 `json:"values,omitempty"`

	Alpha       *float64  `json:"alpha,omitempty"`
	Percentile  *float64  `json:"percentile,omitempty"`
	Percentiles []float64 `json:"percentiles,omitempty"`
	Weights     []float64 `json:"weights,omitempty"`
	AcceptEqual *bool     `json:"accept_equal,omitempty"`
	Reverse     bool      `json:"reverse,omitempty"`
}

// Spec resolves the request into an evaluator metric spec.
func (mr MetricRequest) Spec() (evaluator.MetricSpec, error) {
	var (
		metric metrics.Metric
		params metrics.Params
	)
	if mr.Metric != "" {
		def, ok := metrics.Lookup(mr.Metric)
		if !ok {
			return evaluator.MetricSpec{}, fmt.Errorf("unknown metric %q", mr.Metric)
		}
		metric = def.Metric
		params = def.Defaults
	} else {
		m, err := metrics.Compose(mr.T1, mr.T2, mr.T3)
		if err != nil {
			return evaluator.MetricSpec{}, err
		}
		metric = m
	}

	if mr.Alpha != nil {
		params.T3.Weights = []float64{*mr.Alpha, 1 - *mr.Alpha}
	}
	if mr.Percentile != nil {
		params.T2.Percentiles = []float64{*mr.Percentile}
	}
	if len(mr.Percentiles) > 0 {
		params.T2.Percentiles = mr.Percentiles
	}
	if len(mr.Weights) > 0 {
		params.T3.Weights = mr.Weights
	}
	if mr.Threshold != nil {
		ref := metrics.ScalarRef(*mr.Threshold)
		params.T1.Threshold = &ref
	}
	if len(mr.Values) > 0 {
		ref := metrics.VectorRef(mr.Values)
		params.T1.Values = &ref
	}
	if mr.AcceptEqual != nil {
		params.T1.AcceptEqual = *mr.AcceptEqual
	}
	if mr.Reverse {
		params.T3.Reverse = true
	}

	return evaluator.MetricSpec{
		F:         mr.F,
		Maximise:  mr.Maximise,
		Threshold: mr.ThresholdColumn,
		Metric:    metric,
		Params:    params,
	}, nil
}

// EvaluateResponse maps metric names to robustness values and reports
// metrics whose computation failed.
type EvaluateResponse struct {
	R      map[string]metrics.R `json:"r"`
	Failed map[string]string    `json:"failed,omitempty"`
}

// Similarity kinds.
const (
	KindScenarios = "scenarios"
	KindMetrics   = "metrics"
)

// SimilarityRequest carries an (m, k) robustness matrix: m decision
// alternatives, k scenario sets or metric definitions depending on
// Kind.
type SimilarityRequest struct {
	R    [][]Float `json:"r"`
	Kind string    `json:"kind"`
}

// SimilarityResponse holds symmetric (k, k) similarity matrices. Delta
// is only present for the scenarios kind. NaN entries (degenerate
// deltas, constant-vector taus) cross the wire as null.
type SimilarityResponse struct {
	Delta [][]Float `json:"delta,omitempty"`
	Tau   [][]Float `json:"tau"`
}

// MetricsResponse lists the registered metric names.
type MetricsResponse struct {
	Metrics []string `json:"metrics"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
