package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stage-3 transforms collapse the selected scenarios into one
// robustness value per decision alternative.

// FIdentity flattens a single-scenario selection. Any other column
// count is a shape error.
func FIdentity(f *mat.Dense) ([]float64, error) {
	m, n := f.Dims()
	if n != 1 {
		return nil, shapeErrorf("metrics: f identity", "have %d scenarios, want exactly 1", n)
	}
	out := make([]float64, m)
	mat.Col(out, 0, f)
	return out, nil
}

// FMean aggregates each alternative to its mean performance.
func FMean(f *mat.Dense) []float64 {
	m, n := f.Dims()
	out := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out[i] = floats.Sum(row) / float64(n)
	}
	return out
}

// FSum aggregates each alternative to its scenario sum divided by the
// scenario count, making it numerically identical to FMean.
func FSum(f *mat.Dense) []float64 {
	return FMean(f)
}

// FRange aggregates each alternative to max - min.
func FRange(f *mat.Dense) []float64 {
	m, n := f.Dims()
	out := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out[i] = floats.Max(row) - floats.Min(row)
	}
	return out
}

// FVariance aggregates each alternative to its sample variance
// (divisor n-1). A single-scenario selection yields NaN.
func FVariance(f *mat.Dense) []float64 {
	m, n := f.Dims()
	out := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out[i] = stat.Variance(row, nil)
	}
	return out
}

// FMeanVariance aggregates each alternative to (mean+1)/(stddev+1);
// the offsets keep a constant row from dividing by zero.
func FMeanVariance(f *mat.Dense) []float64 {
	m, n := f.Dims()
	out := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		mean := floats.Sum(row) / float64(n)
		out[i] = (mean + 1) / (stat.StdDev(row, nil) + 1)
	}
	return out
}

// FWSum aggregates each alternative to the dot product of its selected
// scenarios with weights.
func FWSum(f *mat.Dense, weights []float64) ([]float64, error) {
	m, n := f.Dims()
	if len(weights) != n {
		return nil, shapeErrorf("metrics: f weighted sum", "have %d weights, want one per scenario (%d)", len(weights), n)
	}
	out := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out[i] = floats.Dot(row, weights)
	}
	return out, nil
}

// FSkew computes a percentile-based skew from exactly 3 columns
// interpreted as (p10, p50, p90):
//
//	R = (p50 - (p90+p10)/2) / ((p90-p10)/2)
//
// reverse flips the preference towards a larger high-performance tail.
// A degenerate row with p90 == p10 yields NaN; that is the contract,
// not a guarded case.
func FSkew(f *mat.Dense, reverse bool) ([]float64, error) {
	m, n := f.Dims()
	if n != 3 {
		return nil, shapeErrorf("metrics: f skew", "have %d scenarios, want exactly 3 (p10, p50, p90)", n)
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		p10, p50, p90 := f.At(i, 0), f.At(i, 1), f.At(i, 2)
		r := p50 - (p90+p10)/2
		if reverse {
			r = -r
		}
		out[i] = r / ((p90 - p10) / 2)
	}
	return out, nil
}

// FKurtosis computes a percentile-based kurtosis from exactly 4
// columns interpreted as (p10, p25, p75, p90):
//
//	R = (p90-p10) / (p75-p25)
//
// A degenerate row with p75 == p25 yields NaN or Inf; that is the
// contract, not a guarded case.
func FKurtosis(f *mat.Dense) ([]float64, error) {
	m, n := f.Dims()
	if n != 4 {
		return nil, shapeErrorf("metrics: f kurtosis", "have %d scenarios, want exactly 4 (p10, p25, p75, p90)", n)
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = (f.At(i, 3) - f.At(i, 0)) / (f.At(i, 2) - f.At(i, 1))
	}
	return out, nil
}
