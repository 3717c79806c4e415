package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// longTable is the worked example in long form: two decision
// alternatives over three scenarios, one row per pair, deliberately
// not in canonical order.
func longTable() *Table {
	return &Table{
		SIdx: []int{2, 0, 1, 1, 0, 2},
		LIdx: []int{1, 0, 0, 1, 1, 0},
		Columns: map[string][]float64{
			"cost": {0.6, 0.99, 1.0, 0.6, 0.69, 0.5},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, longTable().Validate())

	empty := &Table{}
	assert.Error(t, empty.Validate())

	mismatched := longTable()
	mismatched.LIdx = mismatched.LIdx[:5]
	assert.Error(t, mismatched.Validate())

	short := longTable()
	short.Columns["cost"] = short.Columns["cost"][:4]
	var schemaErr *SchemaError
	require.ErrorAs(t, short.Validate(), &schemaErr)
	assert.Contains(t, schemaErr.Error(), "cost")
}

func TestSortedCanonicalizes(t *testing.T) {
	sorted := longTable().sorted()

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, sorted.LIdx)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, sorted.SIdx)
	assert.Equal(t,
		[]float64{0.99, 1.0, 0.5, 0.69, 0.6, 0.6},
		sorted.Columns["cost"])
}

func TestShape(t *testing.T) {
	sIdxs, lIdxs, err := longTable().shape()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, sIdxs)
	assert.Equal(t, []int{0, 1}, lIdxs)
}

func TestShapeIncompleteProduct(t *testing.T) {
	tbl := &Table{
		SIdx: []int{0, 0, 1},
		LIdx: []int{0, 1, 0},
		Columns: map[string][]float64{
			"cost": {0.99, 0.69, 1.0},
		},
	}
	_, _, err := tbl.shape()
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Error(), "Cartesian")
}

func TestShapeDuplicatePair(t *testing.T) {
	tbl := &Table{
		SIdx: []int{0, 0, 1, 1, 0, 1},
		LIdx: []int{0, 1, 0, 1, 0, 0},
		Columns: map[string][]float64{
			"cost": {1, 2, 3, 4, 5, 6},
		},
	}
	_, _, err := tbl.shape()
	assert.Error(t, err)
}

func TestMatrixReshape(t *testing.T) {
	tbl := longTable().sorted()
	f := tbl.matrix(tbl.Columns["cost"], 2, 3)

	m, n := f.Dims()
	assert.Equal(t, 2, m)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 0.99, f.At(0, 0), 1e-12)
	assert.InDelta(t, 0.5, f.At(0, 2), 1e-12)
	assert.InDelta(t, 0.69, f.At(1, 0), 1e-12)
}
