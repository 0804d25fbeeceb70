// Package metrics gathers per-project metrics from the upstream metrics API.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Endpoint names one upstream metrics endpoint.
type Endpoint string

const (
	Accuracy    Endpoint = "accuracy"
	SuccessRate Endpoint = "success-rate"
	Efficiency  Endpoint = "efficiency"
	Errors      Endpoint = "errors"
	Throughput  Endpoint = "throughput"
)

// Endpoints lists every endpoint queried for a project.
var Endpoints = []Endpoint{Accuracy, SuccessRate, Efficiency, Errors, Throughput}

// ErrMalformedPayload is returned when an endpoint answers without a data object.
var ErrMalformedPayload = errors.New("malformed metrics payload")

// Fetcher retrieves the data object of one endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, projectID string, endpoint Endpoint) (map[string]any, error)
}

// HTTPFetcher reads {BaseURL}/api/v1/metrics/project/{id}/{endpoint}.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, projectID string, endpoint Endpoint) (map[string]any, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	u := fmt.Sprintf("%s/api/v1/metrics/project/%s/%s",
		strings.TrimSuffix(f.BaseURL, "/"), url.PathEscape(projectID), endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data map[string]any `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	return payload.Data, nil
}

// Collector fans out to every endpoint and waits for all of them to settle.
type Collector struct {
	fetcher   Fetcher
	timeout   time.Duration
	logger    *zap.Logger
	onFailure func(Endpoint, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithTimeout bounds each endpoint request.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) { c.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// WithFailureHook is called once per failed endpoint.
func WithFailureHook(fn func(Endpoint, error)) Option {
	return func(c *Collector) { c.onFailure = fn }
}

func NewCollector(fetcher Fetcher, opts ...Option) *Collector {
	c := &Collector{fetcher: fetcher, timeout: 5 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type settled struct {
	endpoint Endpoint
	data     map[string]any
	err      error
}

// Collect queries every endpoint concurrently. It never fails: an endpoint
// that errors, times out or panics contributes zeros and is listed in Failed.
func (c *Collector) Collect(ctx context.Context, projectID string) models.ProjectMetrics {
	results := make([]settled, len(Endpoints))
	var wg sync.WaitGroup
	for i, ep := range Endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.fetchOne(ctx, projectID, ep)
		}()
	}
	wg.Wait()

	out := models.ProjectMetrics{ProjectID: projectID}
	for _, r := range results {
		if r.err != nil {
			out.Failed = append(out.Failed, string(r.endpoint))
			c.logger.Warn("metrics endpoint failed",
				zap.String("project_id", projectID),
				zap.String("endpoint", string(r.endpoint)),
				zap.Error(r.err))
			if c.onFailure != nil {
				c.onFailure(r.endpoint, r.err)
			}
			continue
		}
		switch r.endpoint {
		case Accuracy:
			out.Accuracy = Number(r.data, "accuracy")
		case SuccessRate:
			out.SuccessRate = Number(r.data, "success_rate")
			out.TotalRuns = Number(r.data, "total_runs")
		case Efficiency:
			out.Efficiency = Number(r.data, "efficiency")
			out.AvgLatencyMs = Number(r.data, "avg_latency_ms")
		case Errors:
			out.ErrorRate = Number(r.data, "error_rate")
			out.ErrorCount = Number(r.data, "error_count")
		case Throughput:
			out.Throughput = Number(r.data, "throughput")
		}
	}
	return out
}

func (c *Collector) fetchOne(ctx context.Context, projectID string, ep Endpoint) (res settled) {
	res.endpoint = ep
	defer func() {
		if r := recover(); r != nil {
			res.data, res.err = nil, fmt.Errorf("panic fetching %s: %v", ep, r)
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res.data, res.err = c.fetcher.Fetch(ctx, projectID, ep)
	return res
}

// Number reads a numeric field from a payload. Missing, non-numeric and
// non-finite values read as 0.
func Number(data map[string]any, key string) float64 {
	var f float64
	switch v := data[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
