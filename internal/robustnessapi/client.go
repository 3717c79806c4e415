package robustnessapi

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/rapidlabs/rapid/internal/config"
)

// Client is a client wrapper for the robustness HTTP API.
type Client struct {
	client  *resty.Client
	BaseURL string
}

// NewClient creates a new API client using the provided environment
// configuration. Requests are retried with backoff through a
// retryablehttp transport.
func NewClient(cfg *config.ClientEnvConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.ClientRetries
	retry.HTTPClient.Timeout = cfg.ClientTimeout
	retry.Logger = nil

	client := resty.NewWithClient(retry.StandardClient()).
		SetBaseURL(cfg.APIBaseURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Client{
		client:  client,
		BaseURL: cfg.APIBaseURL,
	}, nil
}

func postJSON[T any](client *resty.Client, path string, body any) (T, error) {
	var result T
	resp, err := client.R().
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("post request failed")
		return result, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Str("path", path).Msg("post non-2xx")
		return result, fmt.Errorf("request returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// Evaluate computes robustness values for every requested metric.
func (c *Client) Evaluate(req EvaluateRequest) (EvaluateResponse, error) {
	return postJSON[EvaluateResponse](c.client, "/api/v1/evaluate", req)
}

// Similarity computes pairwise similarity matrices for a robustness
// matrix.
func (c *Client) Similarity(req SimilarityRequest) (SimilarityResponse, error) {
	return postJSON[SimilarityResponse](c.client, "/api/v1/similarity", req)
}

// MetricNames lists the metrics the server knows.
func (c *Client) MetricNames() ([]string, error) {
	var result MetricsResponse
	resp, err := c.client.R().
		SetResult(&result).
		Get("/api/v1/metrics")
	if err != nil {
		return nil, fmt.Errorf("get /api/v1/metrics: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Metrics, nil
}
