package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Stage-2 transforms reduce the scenario axis to a chosen subset. They
// never change the number of decision alternatives.

// AllScenarios keeps every scenario.
func AllScenarios(f *mat.Dense) *mat.Dense {
	return f
}

// WorstCase keeps only each alternative's worst scenario.
func WorstCase(f *mat.Dense) *mat.Dense {
	m, n := f.Dims()
	out := mat.NewDense(m, 1, nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out.Set(i, 0, floats.Min(row))
	}
	return out
}

// BestCase keeps only each alternative's best scenario.
func BestCase(f *mat.Dense) *mat.Dense {
	m, n := f.Dims()
	out := mat.NewDense(m, 1, nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out.Set(i, 0, floats.Max(row))
	}
	return out
}

// WorstAndBestCases keeps the two extreme scenarios, worst first.
func WorstAndBestCases(f *mat.Dense) *mat.Dense {
	m, n := f.Dims()
	out := mat.NewDense(m, 2, nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		out.Set(i, 0, floats.Min(row))
		out.Set(i, 1, floats.Max(row))
	}
	return out
}

// WorstHalf keeps the worst int(n/2 + 0.51) scenarios per alternative,
// sorted ascending. The rounding rule matches the reference vectors:
// the half-count rounds up for odd n.
func WorstHalf(f *mat.Dense) *mat.Dense {
	m, n := f.Dims()
	keep := int(float64(n)/2 + 0.51)
	out := mat.NewDense(m, keep, nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		sort.Float64s(row)
		out.SetRow(i, row[:keep])
	}
	return out
}

// SelectPercentiles keeps one column per requested percentile (a
// fraction in [0, 1]), in request order, using nearest-rank
// interpolation: the sorted-row index is round-half-even(q*(n-1)).
// Linear interpolation is deliberately not used.
func SelectPercentiles(f *mat.Dense, percentiles []float64) (*mat.Dense, error) {
	if len(percentiles) == 0 {
		return nil, shapeErrorf("metrics: select percentiles", "no percentiles requested")
	}
	m, n := f.Dims()
	idxs := make([]int, len(percentiles))
	for k, q := range percentiles {
		if q < 0 || q > 1 {
			return nil, shapeErrorf("metrics: select percentiles", "percentile %v outside [0, 1]", q)
		}
		idxs[k] = int(math.RoundToEven(q * float64(n-1)))
	}
	out := mat.NewDense(m, len(percentiles), nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		sort.Float64s(row)
		for k, idx := range idxs {
			out.Set(i, k, row[idx])
		}
	}
	return out, nil
}
