package metrics

import (
	"bytes"
	"math"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/mat"
)

// T1Params configures a stage-1 transform. Maximise is set by the
// composer from the metric call; Threshold and Values carry reference
// values for the regret and satisficing transforms.
type T1Params struct {
	Maximise    bool
	Threshold   *Ref
	Values      *Ref
	AcceptEqual bool
}

// T2Params configures a stage-2 transform.
type T2Params struct {
	Percentiles []float64
}

// T3Params configures a stage-3 transform.
type T3Params struct {
	Weights []float64
	Reverse bool
}

// Params bundles the per-stage configuration for one metric call.
type Params struct {
	Maximise bool
	T1       T1Params
	T2       T2Params
	T3       T3Params
}

// T1Func, T2Func and T3Func are the composition contracts for the
// three stages. Each named transform has an adapter of the matching
// type so a Metric can bind any combination.
type (
	T1Func func(f *mat.Dense, p T1Params) (*mat.Dense, error)
	T2Func func(f *mat.Dense, p T2Params) (*mat.Dense, error)
	T3Func func(f *mat.Dense, p T3Params) ([]float64, error)
)

// Stage adapters. Threshold-based T1 transforms fall back to a zero
// scalar threshold when none is configured; regret from values has no
// meaningful default and requires an explicit reference.
var (
	T1Identity T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		return Identity(f, p.Maximise), nil
	}
	T1RegretFromBestDA T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		return RegretFromBestDA(f, p.Maximise), nil
	}
	T1RegretFromValues T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		if p.Values == nil {
			return nil, shapeErrorf("metrics: regret from values", "no reference values supplied")
		}
		return RegretFromValues(f, *p.Values, p.Maximise)
	}
	T1RegretFromMedian T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		return RegretFromMedian(f, p.Maximise), nil
	}
	T1SatisficingRegret T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		return SatisficingRegret(f, refOrZero(p.Threshold), p.Maximise)
	}
	T1Satisfice T1Func = func(f *mat.Dense, p T1Params) (*mat.Dense, error) {
		return Satisfice(f, p.Maximise, refOrZero(p.Threshold), p.AcceptEqual)
	}

	T2AllScenarios T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return AllScenarios(f), nil
	}
	T2WorstCase T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return WorstCase(f), nil
	}
	T2BestCase T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return BestCase(f), nil
	}
	T2WorstAndBestCases T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return WorstAndBestCases(f), nil
	}
	T2WorstHalf T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return WorstHalf(f), nil
	}
	T2SelectPercentiles T2Func = func(f *mat.Dense, p T2Params) (*mat.Dense, error) {
		return SelectPercentiles(f, p.Percentiles)
	}

	T3FIdentity T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FIdentity(f)
	}
	T3FMean T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FMean(f), nil
	}
	T3FSum T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FSum(f), nil
	}
	T3FRange T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FRange(f), nil
	}
	T3FVariance T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FVariance(f), nil
	}
	T3FMeanVariance T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FMeanVariance(f), nil
	}
	T3FWSum T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FWSum(f, p.Weights)
	}
	T3FSkew T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FSkew(f, p.Reverse)
	}
	T3FKurtosis T3Func = func(f *mat.Dense, p T3Params) ([]float64, error) {
		return FKurtosis(f)
	}
)

func refOrZero(r *Ref) Ref {
	if r == nil {
		return ScalarRef(0)
	}
	return *r
}

// Metric binds one transform from each stage into a single robustness
// metric. Every named metric is a pre-bound Metric value; custom
// metrics are built the same way.
type Metric struct {
	T1 T1Func
	T2 T2Func
	T3 T3Func
}

// Calc runs the three stages in order over the performance matrix and
// returns one robustness value per decision alternative.
func (m Metric) Calc(f *mat.Dense, p Params) (R, error) {
	p.T1.Maximise = p.Maximise
	transformed, err := m.T1(f, p.T1)
	if err != nil {
		return R{}, err
	}
	selected, err := m.T2(transformed, p.T2)
	if err != nil {
		return R{}, err
	}
	vals, err := m.T3(selected, p.T3)
	if err != nil {
		return R{}, err
	}
	return R{values: vals}, nil
}

// R holds one robustness value per decision alternative. Higher is
// always better. A single-alternative result behaves as a scalar:
// Scalar reports it and the JSON form is a bare number rather than a
// one-element array.
type R struct {
	values []float64
}

// NewR wraps a robustness vector.
func NewR(values []float64) R {
	return R{values: values}
}

// Len reports the number of decision alternatives.
func (r R) Len() int { return len(r.values) }

// At returns the robustness value for alternative i.
func (r R) At(i int) float64 { return r.values[i] }

// Values returns the underlying robustness vector.
func (r R) Values() []float64 { return r.values }

// Scalar unwraps a single-alternative result.
func (r R) Scalar() (float64, bool) {
	if len(r.values) != 1 {
		return 0, false
	}
	return r.values[0], true
}

// MarshalJSON emits a bare number for a single alternative and an
// array otherwise. NaN and Inf have no JSON number form and are
// encoded as null; degenerate robustness values are data, so they must
// survive the wire.
func (r R) MarshalJSON() ([]byte, error) {
	if v, ok := r.Scalar(); ok {
		return appendJSONFloat(nil, v)
	}
	buf := []byte{'['}
	var err error
	for i, v := range r.values {
		if i > 0 {
			buf = append(buf, ',')
		}
		if buf, err = appendJSONFloat(buf, v); err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON accepts either form emitted by MarshalJSON, restoring
// NaN for null entries.
func (r *R) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		r.values = []float64{math.NaN()}
		return nil
	}
	var ptrs []*float64
	if err := sonic.Unmarshal(data, &ptrs); err == nil {
		vals := make([]float64, len(ptrs))
		for i, p := range ptrs {
			if p == nil {
				vals[i] = math.NaN()
			} else {
				vals[i] = *p
			}
		}
		r.values = vals
		return nil
	}
	var v float64
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}
	r.values = []float64{v}
	return nil
}

func appendJSONFloat(buf []byte, v float64) ([]byte, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(buf, "null"...), nil
	}
	out, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(buf, out...), nil
}
