// Package evaluator bridges long-format performance tables to the
// matrix pipeline, evaluating many named robustness metrics in one
// pass.
package evaluator

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SchemaError reports a table that does not satisfy the evaluator's
// schema: a referenced column is missing, column lengths disagree, or
// the (scenario, alternative) index pairs are not a complete Cartesian
// product.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return "evaluator: " + e.Msg
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// Table is a long-format performance table: one row per
// (scenario, decision alternative) pair. SIdx and LIdx key each row by
// scenario and decision-alternative index; Columns holds one numeric
// column per performance metric plus any auxiliary columns such as
// per-row thresholds.
type Table struct {
	SIdx    []int                `json:"s_idx"`
	LIdx    []int                `json:"l_idx"`
	Columns map[string][]float64 `json:"columns"`
}

// Validate checks that every column has one value per row.
func (t *Table) Validate() error {
	rows := len(t.SIdx)
	if rows == 0 {
		return schemaErrorf("table has no rows")
	}
	if len(t.LIdx) != rows {
		return schemaErrorf("l_idx has %d entries, s_idx has %d", len(t.LIdx), rows)
	}
	for name, col := range t.Columns {
		if len(col) != rows {
			return schemaErrorf("column %q has %d values, want %d", name, len(col), rows)
		}
	}
	return nil
}

// Column returns the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.Columns[name]
	return col, ok
}

// sorted returns a copy of the table canonicalized by
// (l_idx, s_idx) ascending, so the reshape below is deterministic
// regardless of input row order.
func (t *Table) sorted() *Table {
	rows := len(t.SIdx)
	perm := make([]int, rows)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ia, ib := perm[a], perm[b]
		if t.LIdx[ia] != t.LIdx[ib] {
			return t.LIdx[ia] < t.LIdx[ib]
		}
		return t.SIdx[ia] < t.SIdx[ib]
	})

	out := &Table{
		SIdx:    make([]int, rows),
		LIdx:    make([]int, rows),
		Columns: make(map[string][]float64, len(t.Columns)),
	}
	for i, src := range perm {
		out.SIdx[i] = t.SIdx[src]
		out.LIdx[i] = t.LIdx[src]
	}
	for name, col := range t.Columns {
		dst := make([]float64, rows)
		for i, src := range perm {
			dst[i] = col[src]
		}
		out.Columns[name] = dst
	}
	return out
}

// shape derives the unique scenario and decision-alternative indices
// and checks that every scenario carries the identical set of
// alternatives.
func (t *Table) shape() (sIdxs, lIdxs []int, err error) {
	sIdxs = uniqueSorted(t.SIdx)
	lIdxs = uniqueSorted(t.LIdx)

	perScenario := make(map[int]map[int]bool, len(sIdxs))
	for i, s := range t.SIdx {
		if perScenario[s] == nil {
			perScenario[s] = make(map[int]bool, len(lIdxs))
		}
		perScenario[s][t.LIdx[i]] = true
	}
	for _, s := range sIdxs {
		if len(perScenario[s]) != len(lIdxs) {
			return nil, nil, schemaErrorf(
				"scenario %d has %d decision alternatives, want %d (incomplete Cartesian product)",
				s, len(perScenario[s]), len(lIdxs))
		}
	}
	if len(t.SIdx) != len(sIdxs)*len(lIdxs) {
		return nil, nil, schemaErrorf(
			"table has %d rows, want %d (scenarios x alternatives)",
			len(t.SIdx), len(sIdxs)*len(lIdxs))
	}
	return sIdxs, lIdxs, nil
}

// matrix reshapes a canonically sorted column into (m, n) wide form:
// one row per decision alternative, one column per scenario.
func (t *Table) matrix(col []float64, m, n int) *mat.Dense {
	data := make([]float64, len(col))
	copy(data, col)
	return mat.NewDense(m, n, data)
}

func uniqueSorted(idxs []int) []int {
	seen := make(map[int]bool, len(idxs))
	out := make([]int, 0, len(idxs))
	for _, v := range idxs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
