// Package client is the HTTP client of the console API used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

const (
	DefaultBaseURL = "http://localhost:8080"

	defaultTimeout = 30 * time.Second
	pingAttempts   = 5
	pingBackoff    = 100 * time.Millisecond
)

// envConfig is read from CONSOLE_API_BASE_URL and CONSOLE_API_TOKEN.
type envConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Token   string `env:"TOKEN"`
}

// APIError is a non-2xx response of the console API.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d)", e.Detail, e.Status)
	}
	if e.Title != "" {
		return fmt.Sprintf("%s (%d)", e.Title, e.Status)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ServerVersion is the build information reported by the server.
type ServerVersion struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
}

// Health is the health report of the server.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Client talks to the console API.
type Client struct {
	BaseURL    string
	token      string
	httpClient *http.Client
}

// FromEnv creates a client configured from CONSOLE_API_* variables without
// contacting the server.
func FromEnv() (*Client, error) {
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CONSOLE_API_"}); err != nil {
		return nil, fmt.Errorf("failed to read client configuration: %w", err)
	}
	return NewClient(cfg.BaseURL, cfg.Token), nil
}

// NewClientFromEnv is FromEnv followed by a ping with retries.
func NewClientFromEnv() (*Client, error) {
	c, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClient creates a client for baseURL. An empty token sends no
// Authorization header.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Ping checks that the server is reachable.
func (c *Client) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/v0/ping", nil, nil)
}

func pingWithRetry(c *Client) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = c.Ping(); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(time.Duration(attempt) * pingBackoff)
		}
	}
	return fmt.Errorf("console API at %s is not reachable: %w", c.BaseURL, err)
}

// GetVersion returns the server build information.
func (c *Client) GetVersion(ctx context.Context) (*ServerVersion, error) {
	var out ServerVersion
	if err := c.do(ctx, http.MethodGet, "/v0/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the server health. An unhealthy server answers 503, which is
// returned as an *APIError.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/v0/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryCatalog fetches one page of the filtered catalog.
func (c *Client) QueryCatalog(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Domain != "" {
		params.Set("domain", q.Domain)
	}
	params.Set("includeExternal", strconv.FormatBool(q.IncludeExternal))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Mode != "" {
		params.Set("mode", q.Mode)
	}

	var out models.CatalogPage
	if err := c.do(ctx, http.MethodGet, "/v0/catalog?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAgents returns every agent, optionally filtered by project.
func (c *Client) ListAgents(ctx context.Context, projectID string) ([]models.Agent, error) {
	path := "/v0/agents"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}
	var out models.AgentListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Agents, nil
}

// ListVersions returns the configuration history of an agent.
func (c *Client) ListVersions(ctx context.Context, agentID string) (*models.AgentVersionsResponse, error) {
	var out models.AgentVersionsResponse
	if err := c.do(ctx, http.MethodGet, "/v0/agents/"+url.PathEscape(agentID)+"/versions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns every project.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out models.ProjectListResponse
	if err := c.do(ctx, http.MethodGet, "/v0/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// ListFlags returns the current feature flag snapshot.
func (c *Client) ListFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	var out models.FeatureFlagsResponse
	if err := c.do(ctx, http.MethodGet, "/v0/flags", nil, &out); err != nil {
		return nil, err
	}
	return out.Flags, nil
}

// SetFlag stores a flag value given in string form.
func (c *Client) SetFlag(ctx context.Context, name, value string) (*models.FeatureFlag, error) {
	var out models.FeatureFlag
	body := models.SetFeatureFlagInput{Value: value}
	if err := c.do(ctx, http.MethodPut, "/v0/flags/"+url.PathEscape(name), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
