package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestScenariosSimilarity(t *testing.T) {
	// Two alternatives scored under two scenario sets.
	R := mat.NewDense(2, 2, []float64{
		1, 2,
		1, 3,
	})

	delta, tau := ScenariosSimilarity(R)

	require.Equal(t, 2, delta.SymmetricDim())
	assert.InDelta(t, 0.0, delta.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, delta.At(1, 1), 1e-12)
	// (|1-2|/1.5 + |1-3|/2) / 2 * 100
	assert.InDelta(t, 500.0/6, delta.At(0, 1), 1e-9)
	assert.InDelta(t, delta.At(0, 1), delta.At(1, 0), 1e-12)

	// Column 0 is constant, so every tau involving it is NaN.
	assert.True(t, math.IsNaN(tau.At(0, 0)))
	assert.True(t, math.IsNaN(tau.At(0, 1)))
	assert.InDelta(t, 1.0, tau.At(1, 1), 1e-12)
}

func TestScenariosSimilarityZeroPair(t *testing.T) {
	R := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 2,
	})

	delta, _ := ScenariosSimilarity(R)
	// 0 vs 0 divides 0 by 0 and the NaN carries through the average.
	assert.True(t, math.IsNaN(delta.At(0, 1)))
}

func TestMetricSimilarity(t *testing.T) {
	// Four alternatives scored under three metric definitions; the
	// third reverses the ranking of the first.
	R := mat.NewDense(4, 3, []float64{
		1, 10, 4,
		2, 20, 3,
		3, 30, 2,
		4, 40, 1,
	})

	tau := MetricSimilarity(R)

	require.Equal(t, 3, tau.SymmetricDim())
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, tau.At(i, i), 1e-12)
	}
	assert.InDelta(t, 1.0, tau.At(0, 1), 1e-12)
	assert.InDelta(t, -1.0, tau.At(0, 2), 1e-12)
	assert.InDelta(t, -1.0, tau.At(1, 2), 1e-12)
	assert.InDelta(t, tau.At(0, 2), tau.At(2, 0), 1e-12)
}

func TestMetricSimilarityWithNaNScores(t *testing.T) {
	R := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		math.NaN(), 3,
		4, 4,
	})

	tau := MetricSimilarity(R)
	assert.InDelta(t, 1.0, tau.At(0, 1), 1e-12)
}
