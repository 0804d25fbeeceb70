package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentregistry-dev/agentconsole/internal/console/catalog"
	"github.com/agentregistry-dev/agentconsole/internal/console/flags"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/pagination"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func (s *consoleServiceImpl) ListCatalogItems(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return items, nil
}

func (s *consoleServiceImpl) QueryCatalog(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
	state, err := filterStateFromQuery(q)
	if err != nil {
		return nil, err
	}
	mode := s.mode
	if q.Mode != "" {
		if mode, err = flags.ParseMode(q.Mode); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	items, err := s.ListCatalogItems(ctx)
	if err != nil {
		return nil, err
	}

	// One flags snapshot per request keeps min stars and show-others consistent.
	threshold := s.flagValues().Threshold(mode)

	result := catalog.FilterAndSort(items, items, state)
	page := pagination.Paginate(result.Filtered, func(it models.CatalogItem) int { return it.TotalStars },
		threshold, q.Page, pageSize)

	pageItems := page.Items
	if u, ok := session.FromContext(ctx); ok {
		pageItems = s.favoritesFor(u).Apply(pageItems)
	}

	s.telemetry.CatalogQueried(ctx, string(mode), result.ResultCount)
	logging.Log(ctx, logging.ServiceEventLog, zapcore.DebugLevel, "catalog queried",
		zap.String("mode", string(mode)),
		zap.Int("results", result.ResultCount),
		zap.Int("page", page.Page),
		zap.Int("total_pages", page.TotalPages))

	return &models.CatalogPage{
		Items: pageItems,
		Facets: models.CatalogFacets{
			AvailableDomains: result.AvailableDomains,
			ResultCount:      result.ResultCount,
			HasActiveFilters: result.HasActiveFilters,
		},
		Metadata: models.CatalogPageMetadata{
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
			TotalItems: page.TotalItems,
			MinStars:   threshold.MinStars,
		},
	}, nil
}

func filterStateFromQuery(q models.CatalogQuery) (catalog.FilterState, error) {
	state := catalog.DefaultFilterState()
	state.Search = q.Search
	state.Domain = strings.TrimSpace(q.Domain)
	state.IncludeExternal = q.IncludeExternal

	switch c := catalog.CategoryFilter(strings.TrimSpace(q.Category)); c {
	case "":
	case catalog.CategoryAll, catalog.CategorySkill, catalog.CategoryDataSource:
		state.Category = c
	default:
		return state, validationError("unknown category %q", q.Category)
	}
	if q.SortBy != "" {
		// Unknown orders fall back to catalog order inside FilterAndSort.
		state.SortBy = catalog.SortOrder(q.SortBy)
	}
	return state, nil
}

func (s *consoleServiceImpl) favoritesFor(u session.User) *catalog.Favorites {
	key := u.SessionID
	if key == "" {
		key = u.UserID
	}
	s.favMu.Lock()
	defer s.favMu.Unlock()
	f, ok := s.favorites[key]
	if !ok {
		f = catalog.NewFavorites()
		s.favorites[key] = f
	}
	return f
}

func (s *consoleServiceImpl) ToggleFavorite(ctx context.Context, key string) (*models.FavoriteResponse, error) {
	u, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.ListCatalogItems(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, it := range items {
		if it.Key == key {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCatalogItemNotFound
	}
	return &models.FavoriteResponse{Key: key, Favorited: s.favoritesFor(u).Toggle(key)}, nil
}
