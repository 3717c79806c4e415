// Package robustnessapi exposes the robustness pipeline over HTTP and
// provides the matching client.
package robustnessapi

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/rapidlabs/rapid/internal/analysis"
	"github.com/rapidlabs/rapid/internal/config"
	"github.com/rapidlabs/rapid/internal/evaluator"
	"github.com/rapidlabs/rapid/internal/metrics"
)

type Server struct {
	app  *fiber.App
	addr string
}

func NewServer(cfg *config.ServerEnvConfig) *Server {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(ZstdMiddleware())

	s := &Server{
		app:  app,
		addr: fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
	}
	app.Post("/api/v1/evaluate", s.handleEvaluate)
	app.Post("/api/v1/similarity", s.handleSimilarity)
	app.Get("/api/v1/metrics", s.handleMetrics)
	return s
}

func (s *Server) handleEvaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal evaluate request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid payload"})
	}
	if len(req.Metrics) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "no metrics requested"})
	}

	specs := make(map[string]evaluator.MetricSpec, len(req.Metrics))
	failed := make(map[string]string)
	for name, mr := range req.Metrics {
		spec, err := mr.Spec()
		if err != nil {
			failed[name] = err.Error()
			continue
		}
		specs[name] = spec
	}

	results, evalFailed, err := evaluator.FToR(&req.Table, specs)
	if err != nil {
		log.Error().Err(err).Msg("evaluate rejected")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}
	for name, err := range evalFailed {
		failed[name] = err.Error()
	}

	log.Info().Int("computed", len(results)).Int("failed", len(failed)).Msg("evaluate request served")
	return c.Status(fiber.StatusOK).JSON(EvaluateResponse{R: results, Failed: failed})
}

func (s *Server) handleSimilarity(c *fiber.Ctx) error {
	var req SimilarityRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal similarity request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid payload"})
	}

	R, err := metrics.NewPerformance(Float64Rows(req.R))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}

	var resp SimilarityResponse
	switch req.Kind {
	case KindScenarios:
		delta, tau := analysis.ScenariosSimilarity(R)
		resp.Delta = symRows(delta)
		resp.Tau = symRows(tau)
	case KindMetrics:
		resp.Tau = symRows(analysis.MetricSimilarity(R))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: fmt.Sprintf("unknown similarity kind %q", req.Kind),
		})
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(MetricsResponse{Metrics: metrics.Names()})
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			log.Error().Err(err).Msg("server listen failed")
		}
	}()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func symRows(m *mat.SymDense) [][]Float {
	k := m.SymmetricDim()
	rows := make([][]Float, k)
	for i := 0; i < k; i++ {
		row := make([]Float, k)
		for j := 0; j < k; j++ {
			row[j] = Float(m.At(i, j))
		}
		rows[i] = row
	}
	return rows
}
