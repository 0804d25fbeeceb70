package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// ErrFeedUnavailable is returned when no catalog snapshot can be produced.
var ErrFeedUnavailable = errors.New("catalog feed unavailable")

// Source loads the full catalog.
type Source interface {
	Load(ctx context.Context) ([]models.CatalogItem, error)
}

// StaticSource serves a fixed list of items.
type StaticSource []models.CatalogItem

func (s StaticSource) Load(context.Context) ([]models.CatalogItem, error) {
	return slices.Clone([]models.CatalogItem(s)), nil
}

// FileSource reads a JSON or YAML feed from disk on every load.
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

func (s *FileSource) Load(ctx context.Context) ([]models.CatalogItem, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.Path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		format = "json"
	}
	raw, err := ParseFeed(data, format)
	if err != nil {
		return nil, err
	}
	return normalizeAndLog(raw, s.Logger), nil
}

// HTTPSource fetches the catalog from a REST feed.
type HTTPSource struct {
	URL    string
	Token  string
	Client *http.Client
	Logger *zap.Logger
}

func (s *HTTPSource) Load(ctx context.Context) ([]models.CatalogItem, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned status %d", ErrFeedUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog feed: %w", err)
	}
	raw, err := ParseFeed(body, "json")
	if err != nil {
		return nil, err
	}
	return normalizeAndLog(raw, s.Logger), nil
}

func normalizeAndLog(raw []RawItem, logger *zap.Logger) []models.CatalogItem {
	items, err := Normalize(raw)
	if err != nil && logger != nil {
		logger.Warn("dropped invalid catalog records", zap.Error(err))
	}
	return items
}

// CachedSource wraps a source with a TTL. When a refresh fails the last good
// snapshot keeps being served.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	items    []models.CatalogItem
	loadedAt time.Time
	loaded   bool
}

func NewCachedSource(source Source, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, ttl: ttl, now: time.Now, logger: logger}
}

func (c *CachedSource) Load(ctx context.Context) ([]models.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Sub(c.loadedAt) < c.ttl {
		return slices.Clone(c.items), nil
	}

	items, err := c.source.Load(ctx)
	if err != nil {
		if c.loaded {
			c.logger.Warn("catalog refresh failed, serving cached snapshot", zap.Error(err))
			return slices.Clone(c.items), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}

	c.items = items
	c.loadedAt = c.now()
	c.loaded = true
	return slices.Clone(items), nil
}

// Invalidate forces the next Load to hit the underlying source.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
