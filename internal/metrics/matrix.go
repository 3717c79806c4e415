// Package metrics implements robustness metrics as a three-stage
// transform pipeline over performance matrices: a value transform (T1)
// orients raw performance so that greater is better, a scenario
// selector (T2) reduces the scenario axis, and an aggregator (T3)
// collapses the selection into one robustness value per decision
// alternative.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ShapeError reports input whose dimensions cannot satisfy a
// transformation's structural contract.
type ShapeError struct {
	Op  string
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func shapeErrorf(op, format string, args ...any) *ShapeError {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NewPerformance builds an (m, n) performance matrix from row-major
// values: one row per decision alternative, one column per scenario.
func NewPerformance(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, shapeErrorf("metrics: new performance", "no decision alternatives")
	}
	n := len(rows[0])
	if n == 0 {
		return nil, shapeErrorf("metrics: new performance", "no scenarios")
	}
	data := make([]float64, 0, len(rows)*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, shapeErrorf("metrics: new performance",
				"row %d has %d scenarios, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), n, data), nil
}

// VectorPerformance treats a 1-D slice of scenario outcomes as a
// single-alternative (1, n) performance matrix.
func VectorPerformance(vals []float64) (*mat.Dense, error) {
	if len(vals) == 0 {
		return nil, shapeErrorf("metrics: vector performance", "no scenarios")
	}
	data := make([]float64, len(vals))
	copy(data, vals)
	return mat.NewDense(1, len(vals), data), nil
}

type refKind int

const (
	refScalar refKind = iota
	refVector
	refMatrix
)

// Ref holds reference values that performance is compared against: a
// scalar broadcast across all scenarios, one value per scenario, or a
// full (m, n) matrix for per-alternative-and-scenario references as
// injected by the tabular evaluator.
type Ref struct {
	kind   refKind
	scalar float64
	vec    []float64
	matrix *mat.Dense
}

// ScalarRef broadcasts v across every alternative and scenario.
func ScalarRef(v float64) Ref {
	return Ref{kind: refScalar, scalar: v}
}

// VectorRef holds one reference value per scenario.
func VectorRef(v []float64) Ref {
	vals := make([]float64, len(v))
	copy(vals, v)
	return Ref{kind: refVector, vec: vals}
}

// MatrixRef holds one reference value per alternative and scenario.
func MatrixRef(m *mat.Dense) Ref {
	return Ref{kind: refMatrix, matrix: m}
}

func (r Ref) check(op string, m, n int) error {
	switch r.kind {
	case refVector:
		if len(r.vec) != n {
			return shapeErrorf(op, "reference vector has %d values, want one per scenario (%d)", len(r.vec), n)
		}
	case refMatrix:
		if r.matrix == nil {
			return shapeErrorf(op, "nil reference matrix")
		}
		rm, rn := r.matrix.Dims()
		if rm != m || rn != n {
			return shapeErrorf(op, "reference matrix is (%d, %d), want (%d, %d)", rm, rn, m, n)
		}
	}
	return nil
}

func (r Ref) at(i, j int) float64 {
	switch r.kind {
	case refVector:
		return r.vec[j]
	case refMatrix:
		return r.matrix.At(i, j)
	default:
		return r.scalar
	}
}
