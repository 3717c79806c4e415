// Package analysis compares robustness calculations: it quantifies how
// much the choice of scenario set or metric definition changes the
// robustness values and the rankings they induce.
package analysis

import "math"

// KendallTauB computes Kendall's tau-b rank correlation between x and
// y, with tie correction. Pairs where either value is NaN are omitted
// rather than propagated. Returns NaN when fewer than two valid pairs
// remain or when either remaining vector is constant (zero tie-broken
// denominator).
func KendallTauB(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	n := len(xs)
	if n < 2 {
		return math.NaN()
	}

	var concordant, discordant, tiesX, tiesY int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := xs[i] - xs[j]
			dy := ys[i] - ys[j]
			switch {
			case dx == 0 && dy == 0:
				tiesX++
				tiesY++
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}

	n0 := float64(n*(n-1)) / 2
	denom := math.Sqrt((n0 - float64(tiesX)) * (n0 - float64(tiesY)))
	if denom == 0 {
		return math.NaN()
	}
	return float64(concordant-discordant) / denom
}
