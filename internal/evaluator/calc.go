package evaluator

import (
	"github.com/rs/zerolog/log"

	"github.com/rapidlabs/rapid/internal/metrics"
	"github.com/rapidlabs/rapid/internal/utils/logger"
)

// MetricSpec describes one robustness metric to evaluate against a
// table: which performance column it reads, its orientation, an
// optional per-row threshold column, and the composed metric with its
// parameters.
type MetricSpec struct {
	F         string
	Maximise  bool
	Threshold string
	Metric    metrics.Metric
	Params    metrics.Params
}

// FToR evaluates every metric in specs against the table and returns
// one robustness vector per metric name.
//
// A table that fails validation or is not a complete Cartesian product
// aborts the whole call. A metric whose column is missing or whose
// computation fails aborts only that metric: its error is collected in
// failed and the remaining metrics still run.
func FToR(t *Table, specs map[string]MetricSpec) (results map[string]metrics.R, failed map[string]error, err error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	t = t.sorted()
	sIdxs, lIdxs, err := t.shape()
	if err != nil {
		return nil, nil, err
	}
	m, n := len(lIdxs), len(sIdxs)
	logger.Sugar().Debugw("evaluating robustness metrics",
		"alternatives", m, "scenarios", n, "metrics", len(specs))

	results = make(map[string]metrics.R, len(specs))
	failed = make(map[string]error)
	for name, spec := range specs {
		r, err := evalOne(t, spec, m, n)
		if err != nil {
			log.Error().Err(err).Str("metric", name).Msg("robustness metric failed")
			failed[name] = err
			continue
		}
		log.Debug().Str("metric", name).Int("alternatives", r.Len()).Msg("robustness metric computed")
		results[name] = r
	}
	return results, failed, nil
}

func evalOne(t *Table, spec MetricSpec, m, n int) (metrics.R, error) {
	col, ok := t.Column(spec.F)
	if !ok {
		return metrics.R{}, schemaErrorf("performance column %q not in table", spec.F)
	}
	params := spec.Params
	params.Maximise = spec.Maximise

	if spec.Threshold != "" {
		tcol, ok := t.Column(spec.Threshold)
		if !ok {
			return metrics.R{}, schemaErrorf("threshold column %q not in table", spec.Threshold)
		}
		ref := metrics.MatrixRef(t.matrix(tcol, m, n))
		params.T1.Threshold = &ref
	}

	f := t.matrix(col, m, n)
	return spec.Metric.Calc(f, params)
}
