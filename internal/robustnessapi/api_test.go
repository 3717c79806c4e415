package robustnessapi

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidlabs/rapid/internal/config"
	"github.com/rapidlabs/rapid/internal/evaluator"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	s := NewServer(&config.ServerEnvConfig{ServerHost: "127.0.0.1", ServerPort: 0})
	return s.App()
}

func testTable() evaluator.Table {
	return evaluator.Table{
		SIdx: []int{0, 0, 1, 1, 2, 2},
		LIdx: []int{0, 1, 0, 1, 0, 1},
		Columns: map[string][]float64{
			"cost": {0.99, 0.69, 1.0, 0.6, 0.5, 0.6},
		},
	}
}

func postEvaluate(t *testing.T, app *fiber.App, req EvaluateRequest) *http.Response {
	t.Helper()
	body, err := sonic.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, sonic.Unmarshal(body, &out))
	return out
}

func TestEvaluateEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{
		Table: testTable(),
		Metrics: map[string]MetricRequest{
			"maximin": {Metric: "maximin", F: "cost", Maximise: true},
			"laplace": {Metric: "laplace", F: "cost", Maximise: true},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[EvaluateResponse](t, resp)
	assert.Empty(t, out.Failed)
	assert.InDeltaSlice(t, []float64{0.5, 0.6}, out.R["maximin"].Values(), 1e-9)
	assert.InDeltaSlice(t, []float64{0.83, 0.63}, out.R["laplace"].Values(), 1e-9)
}

func TestEvaluateEndpointCustomComposition(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{
		Table: testTable(),
		Metrics: map[string]MetricRequest{
			"custom": {T1: "identity", T2: "worst_case", T3: "f_sum", F: "cost", Maximise: true},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[EvaluateResponse](t, resp)
	assert.InDeltaSlice(t, []float64{0.5, 0.6}, out.R["custom"].Values(), 1e-9)
}

func TestEvaluateEndpointPartialFailure(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{
		Table: testTable(),
		Metrics: map[string]MetricRequest{
			"maximin": {Metric: "maximin", F: "cost", Maximise: true},
			"unknown": {Metric: "no_such_metric", F: "cost"},
			"badcol":  {Metric: "maximin", F: "no_such_column"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[EvaluateResponse](t, resp)
	assert.InDeltaSlice(t, []float64{0.5, 0.6}, out.R["maximin"].Values(), 1e-9)
	assert.Contains(t, out.Failed, "unknown")
	assert.Contains(t, out.Failed, "badcol")
}

// A degenerate distribution makes percentile_skew NaN; the response
// must deliver it as null alongside the finite results.
func TestEvaluateEndpointNaNResult(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{
		Table: evaluator.Table{
			SIdx: []int{0, 0, 1, 1, 2, 2},
			LIdx: []int{0, 1, 0, 1, 0, 1},
			Columns: map[string][]float64{
				"cost": {0.5, 0.6, 0.5, 0.61, 0.5, 0.69},
			},
		},
		Metrics: map[string]MetricRequest{
			"skew":    {Metric: "percentile_skew", F: "cost", Maximise: true},
			"maximin": {Metric: "maximin", F: "cost", Maximise: true},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[EvaluateResponse](t, resp)
	assert.Empty(t, out.Failed)
	skew := out.R["skew"].Values()
	require.Len(t, skew, 2)
	assert.True(t, math.IsNaN(skew[0]))
	assert.InDelta(t, -0.777777777777779, skew[1], 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.6}, out.R["maximin"].Values(), 1e-9)
}

func TestEvaluateEndpointRejectsBadTable(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{
		Table: evaluator.Table{
			SIdx:    []int{0, 0, 1},
			LIdx:    []int{0, 1, 0},
			Columns: map[string][]float64{"cost": {1, 2, 3}},
		},
		Metrics: map[string]MetricRequest{
			"maximin": {Metric: "maximin", F: "cost", Maximise: true},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestEvaluateEndpointRejectsEmptyMetrics(t *testing.T) {
	app := newTestApp(t)

	resp := postEvaluate(t, app, EvaluateRequest{Table: testTable()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func postSimilarity(t *testing.T, app *fiber.App, req SimilarityRequest) *http.Response {
	t.Helper()
	body, err := sonic.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/similarity", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	return resp
}

func TestSimilarityEndpointScenarios(t *testing.T) {
	app := newTestApp(t)

	resp := postSimilarity(t, app, SimilarityRequest{
		Kind: KindScenarios,
		R: [][]Float{
			{1, 2},
			{2, 3},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[SimilarityResponse](t, resp)
	require.Len(t, out.Delta, 2)
	require.Len(t, out.Tau, 2)
	assert.InDelta(t, 0.0, float64(out.Delta[0][0]), 1e-12)
	assert.InDelta(t, float64(out.Delta[0][1]), float64(out.Delta[1][0]), 1e-12)
	assert.InDelta(t, 1.0, float64(out.Tau[0][1]), 1e-12)
}

func TestSimilarityEndpointMetrics(t *testing.T) {
	app := newTestApp(t)

	resp := postSimilarity(t, app, SimilarityRequest{
		Kind: KindMetrics,
		R: [][]Float{
			{1, 4},
			{2, 3},
			{3, 2},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[SimilarityResponse](t, resp)
	assert.Empty(t, out.Delta)
	require.Len(t, out.Tau, 2)
	assert.InDelta(t, -1.0, float64(out.Tau[0][1]), 1e-12)
}

func TestSimilarityEndpointUnknownKind(t *testing.T) {
	app := newTestApp(t)

	resp := postSimilarity(t, app, SimilarityRequest{
		Kind: "nope",
		R:    [][]Float{{1, 2}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// A robustness matrix with a constant column has NaN taus by contract;
// the response must still be serializable.
func TestSimilarityEndpointConstantColumn(t *testing.T) {
	app := newTestApp(t)

	resp := postSimilarity(t, app, SimilarityRequest{
		Kind: KindScenarios,
		R: [][]Float{
			{1, 2},
			{1, 3},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[SimilarityResponse](t, resp)
	assert.InDelta(t, 500.0/6, float64(out.Delta[0][1]), 1e-9)
	assert.True(t, math.IsNaN(float64(out.Tau[0][1])))
	assert.True(t, math.IsNaN(float64(out.Tau[0][0])))
	assert.InDelta(t, 1.0, float64(out.Tau[1][1]), 1e-12)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[MetricsResponse](t, resp)
	assert.Len(t, out.Metrics, 11)
	assert.Contains(t, out.Metrics, "maximin")
}

func TestZstdRoundTrip(t *testing.T) {
	app := newTestApp(t)

	body, err := sonic.Marshal(EvaluateRequest{
		Table: testTable(),
		Metrics: map[string]MetricRequest{
			"maximin": {Metric: "maximin", F: "cost", Maximise: true},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("Accept-Encoding", "zstd")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "zstd", resp.Header.Get("Content-Encoding"))

	defer resp.Body.Close()
	r, err := zstd.NewReader(resp.Body)
	require.NoError(t, err)
	defer r.Close()
	plain, err := io.ReadAll(r)
	require.NoError(t, err)

	var out EvaluateResponse
	require.NoError(t, sonic.Unmarshal(plain, &out))
	assert.InDeltaSlice(t, []float64{0.5, 0.6}, out.R["maximin"].Values(), 1e-9)
}

func TestNewClientNilConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}
