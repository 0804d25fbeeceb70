package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

const defaultPageSize = 100

// CatalogQuerier is satisfied by the console service and the HTTP client.
type CatalogQuerier interface {
	QueryCatalog(ctx context.Context, query models.CatalogQuery) (*models.CatalogPage, error)
}

// Service handles exporting the catalog into feed files.
type Service struct {
	catalog  CatalogQuerier
	pageSize int
	mode     string
}

// NewService creates a new exporter service.
func NewService(catalog CatalogQuerier) *Service {
	return &Service{
		catalog:  catalog,
		pageSize: defaultPageSize,
	}
}

// SetPageSize allows tests to override the pagination size used when
// fetching catalog pages.
func (s *Service) SetPageSize(size int) {
	if size > 0 {
		s.pageSize = size
	}
}

// SetMode selects the console mode whose star threshold applies to the export.
func (s *Service) SetMode(mode string) {
	s.mode = mode
}

// ExportToPath collects every catalog item the console serves and writes them
// to outputPath in the feed format read by the file catalog source. A .yaml or
// .yml extension selects YAML, anything else JSON.
func (s *Service) ExportToPath(ctx context.Context, outputPath string) (int, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("catalog is not initialized")
	}

	items, err := s.collectItems(ctx)
	if err != nil {
		return 0, err
	}

	if err := ensureDir(outputPath); err != nil {
		return 0, err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(items)
	default:
		data, err = json.MarshalIndent(items, "", "  ")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to marshal catalog for export: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write export file %s: %w", outputPath, err)
	}

	return len(items), nil
}

func (s *Service) collectItems(ctx context.Context) ([]models.CatalogItem, error) {
	pageSize := s.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	items := make([]models.CatalogItem, 0)
	seen := make(map[string]struct{})
	for page := 1; ; page++ {
		result, err := s.catalog.QueryCatalog(ctx, models.CatalogQuery{
			Category:        "all",
			IncludeExternal: true,
			Page:            page,
			PageSize:        pageSize,
			Mode:            s.mode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query catalog page %d: %w", page, err)
		}

		for _, item := range result.Items {
			if _, dup := seen[item.Key]; dup {
				continue
			}
			seen[item.Key] = struct{}{}
			item.Favorited = false
			items = append(items, item)
		}

		if len(result.Items) == 0 || page >= result.Metadata.TotalPages {
			break
		}
	}

	return items, nil
}

func ensureDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	return nil
}
