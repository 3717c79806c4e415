// Command rapid evaluates robustness metrics against a long-format
// performance table, or compares the columns of a robustness matrix.
//
// Evaluate:
//
//	rapid -table table.json -metrics metrics.json -out results.json
//
// Compare:
//
//	rapid -similarity scenarios -matrix r.json -out sim.json
//
// Files ending in .zst are read and written zstd-compressed.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/rapidlabs/rapid/internal/analysis"
	"github.com/rapidlabs/rapid/internal/evaluator"
	"github.com/rapidlabs/rapid/internal/metrics"
	"github.com/rapidlabs/rapid/internal/robustnessapi"
	"github.com/rapidlabs/rapid/internal/utils/logger"
	"gonum.org/v1/gonum/mat"
)

func main() {
	tablePath := flag.String("table", "", "long-format performance table (JSON)")
	metricsPath := flag.String("metrics", "", "metric definitions (JSON map of name to metric request)")
	matrixPath := flag.String("matrix", "", "robustness matrix for similarity mode (JSON array of rows)")
	similarity := flag.String("similarity", "", "similarity mode: scenarios or metrics")
	outPath := flag.String("out", "", "output path (default stdout)")
	logger.Init()

	if *similarity != "" {
		runSimilarity(*similarity, *matrixPath, *outPath)
		return
	}
	runEvaluate(*tablePath, *metricsPath, *outPath)
}

func runEvaluate(tablePath, metricsPath, outPath string) {
	if tablePath == "" || metricsPath == "" {
		log.Fatal().Msg("evaluate mode needs -table and -metrics")
	}

	var table evaluator.Table
	mustReadJSON(tablePath, &table)

	var requests map[string]robustnessapi.MetricRequest
	mustReadJSON(metricsPath, &requests)

	specs := make(map[string]evaluator.MetricSpec, len(requests))
	failed := make(map[string]string)
	for name, mr := range requests {
		spec, err := mr.Spec()
		if err != nil {
			failed[name] = err.Error()
			continue
		}
		specs[name] = spec
	}

	results, evalFailed, err := evaluator.FToR(&table, specs)
	if err != nil {
		log.Fatal().Err(err).Msg("table rejected")
	}
	for name, err := range evalFailed {
		failed[name] = err.Error()
	}
	for name := range failed {
		log.Warn().Str("metric", name).Str("reason", failed[name]).Msg("metric failed")
	}

	mustWriteJSON(outPath, robustnessapi.EvaluateResponse{R: results, Failed: failed})
	log.Info().Int("computed", len(results)).Int("failed", len(failed)).Msg("robustness written")
}

func runSimilarity(kind, matrixPath, outPath string) {
	if matrixPath == "" {
		log.Fatal().Msg("similarity mode needs -matrix")
	}

	var rows [][]robustnessapi.Float
	mustReadJSON(matrixPath, &rows)
	R, err := metrics.NewPerformance(robustnessapi.Float64Rows(rows))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid robustness matrix")
	}

	var resp robustnessapi.SimilarityResponse
	switch kind {
	case robustnessapi.KindScenarios:
		delta, tau := analysis.ScenariosSimilarity(R)
		resp.Delta = denseRows(delta)
		resp.Tau = denseRows(tau)
	case robustnessapi.KindMetrics:
		resp.Tau = denseRows(analysis.MetricSimilarity(R))
	default:
		log.Fatal().Str("kind", kind).Msg("unknown similarity kind")
	}

	mustWriteJSON(outPath, resp)
	log.Info().Str("kind", kind).Msg("similarity written")
}

func denseRows(m mat.Symmetric) [][]robustnessapi.Float {
	k := m.SymmetricDim()
	rows := make([][]robustnessapi.Float, k)
	for i := 0; i < k; i++ {
		row := make([]robustnessapi.Float, k)
		for j := 0; j < k; j++ {
			row[j] = robustnessapi.Float(m.At(i, j))
		}
		rows[i] = row
	}
	return rows
}

func mustReadJSON(path string, v any) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("read failed")
	}
	if strings.HasSuffix(path, ".zst") {
		r, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("zstd reader failed")
		}
		raw, err = io.ReadAll(r)
		r.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("zstd decompress failed")
		}
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("unmarshal failed")
	}
}

func mustWriteJSON(path string, v any) {
	out, err := sonic.Marshal(v)
	if err != nil {
		log.Fatal().Err(err).Msg("marshal failed")
	}
	if path == "" {
		fmt.Println(string(out))
		return
	}
	if strings.HasSuffix(path, ".zst") {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			log.Fatal().Err(err).Msg("zstd writer failed")
		}
		if _, err := w.Write(out); err != nil {
			log.Fatal().Err(err).Msg("zstd compress failed")
		}
		if err := w.Close(); err != nil {
			log.Fatal().Err(err).Msg("zstd close failed")
		}
		out = buf.Bytes()
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("write failed")
	}
}
