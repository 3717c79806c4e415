package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ScenariosSimilarity measures how much each pair of scenario sets
// changes the robustness calculation. R is (m, k): robustness values
// for m decision alternatives across k scenario sets.
//
// delta[i,j] is the relative difference between sets i and j,
// elementwise |a-b| / (|a+b|/2) averaged over the m alternatives and
// expressed as a percentage. Two exactly-zero values divide 0 by 0 and
// the NaN propagates into the average; that degeneracy is surfaced as
// data, not coerced.
//
// tau[i,j] is Kendall's tau-b between the two robustness vectors, with
// NaN entries pairwise-omitted.
//
// Both matrices are symmetric; delta's diagonal is 0 and tau's is 1
// for non-constant vectors. They are plain real-valued matrices,
// suitable for any heatmap renderer.
func ScenariosSimilarity(R *mat.Dense) (delta, tau *mat.SymDense) {
	m, k := R.Dims()
	delta = mat.NewSymDense(k, nil)
	tau = mat.NewSymDense(k, nil)

	a := make([]float64, m)
	b := make([]float64, m)
	for i := 0; i < k; i++ {
		mat.Col(a, i, R)
		for j := i; j < k; j++ {
			mat.Col(b, j, R)
			var sum float64
			for l := 0; l < m; l++ {
				sum += math.Abs(a[l]-b[l]) / (math.Abs(a[l]+b[l]) / 2)
			}
			delta.SetSym(i, j, sum/float64(m)*100)
			tau.SetSym(i, j, KendallTauB(a, b))
		}
	}
	return delta, tau
}

// MetricSimilarity measures how much each pair of robustness metrics
// changes the ranking of alternatives. R is (m, k): robustness values
// for m decision alternatives across k metric definitions. The
// algorithm is the rank-correlation half of ScenariosSimilarity; only
// the semantic axis differs.
func MetricSimilarity(R *mat.Dense) *mat.SymDense {
	m, k := R.Dims()
	tau := mat.NewSymDense(k, nil)

	a := make([]float64, m)
	b := make([]float64, m)
	for i := 0; i < k; i++ {
		mat.Col(a, i, R)
		for j := i; j < k; j++ {
			mat.Col(b, j, R)
			tau.SetSym(i, j, KendallTauB(a, b))
		}
	}
	return tau
}
