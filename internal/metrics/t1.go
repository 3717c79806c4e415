package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Stage-1 transforms convert raw performance values into a form where
// greater is always better, optionally expressing regret against a
// reference or a satisficing pass/fail judgment.

// Identity keeps values as-is when maximising and negates them when
// minimising, so that the aim is always to maximise.
func Identity(f *mat.Dense, maximise bool) *mat.Dense {
	m, n := f.Dims()
	out := mat.NewDense(m, n, nil)
	if maximise {
		out.Copy(f)
	} else {
		out.Scale(-1, f)
	}
	return out
}

// RegretFromBestDA expresses each value as regret relative to the best
// decision alternative in the same scenario. The result is <= 0, with 0
// marking the alternative that achieved the scenario's best outcome.
func RegretFromBestDA(f *mat.Dense, maximise bool) *mat.Dense {
	out := Identity(f, maximise)
	m, n := out.Dims()
	for j := 0; j < n; j++ {
		best := out.At(0, j)
		for i := 1; i < m; i++ {
			if v := out.At(i, j); v > best {
				best = v
			}
		}
		for i := 0; i < m; i++ {
			out.Set(i, j, out.At(i, j)-best)
		}
	}
	return out
}

// RegretFromValues expresses each value as regret relative to an
// externally supplied reference.
func RegretFromValues(f *mat.Dense, values Ref, maximise bool) (*mat.Dense, error) {
	m, n := f.Dims()
	if err := values.check("metrics: regret from values", m, n); err != nil {
		return nil, err
	}
	diff := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			diff.Set(i, j, f.At(i, j)-values.at(i, j))
		}
	}
	return Identity(diff, maximise), nil
}

// RegretFromMedian expresses each value as regret relative to the
// alternative's own median performance across scenarios.
func RegretFromMedian(f *mat.Dense, maximise bool) *mat.Dense {
	m, n := f.Dims()
	out := mat.NewDense(m, n, nil)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, f)
		med := median(row)
		for j := 0; j < n; j++ {
			out.Set(i, j, f.At(i, j)-med)
		}
	}
	return Identity(out, maximise)
}

// SatisficingRegret keeps only the magnitude of failure to meet the
// threshold: entries that meet it contribute 0, not a bonus.
func SatisficingRegret(f *mat.Dense, threshold Ref, maximise bool) (*mat.Dense, error) {
	regret, err := RegretFromValues(f, threshold, maximise)
	if err != nil {
		return nil, err
	}
	m, n := regret.Dims()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if regret.At(i, j) > 0 {
				regret.Set(i, j, 0)
			}
		}
	}
	return regret, nil
}

// Satisfice reduces each value to a binary 1.0/0.0 pass/fail indicator
// against the threshold. The threshold is negated when minimising so
// the comparison happens in "greater is better" space; acceptEqual
// selects >= over >.
func Satisfice(f *mat.Dense, maximise bool, threshold Ref, acceptEqual bool) (*mat.Dense, error) {
	m, n := f.Dims()
	if err := threshold.check("metrics: satisfice", m, n); err != nil {
		return nil, err
	}
	out := Identity(f, maximise)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			c := threshold.at(i, j)
			if !maximise {
				c = -c
			}
			v := out.At(i, j)
			ok := v > c
			if acceptEqual {
				ok = v >= c
			}
			if ok {
				out.Set(i, j, 1)
			} else {
				out.Set(i, j, 0)
			}
		}
	}
	return out, nil
}

// median averages the two middle values for even-length input. The
// slice is used as scratch space.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
