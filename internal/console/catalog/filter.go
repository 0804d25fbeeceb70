// Package catalog filters, sorts and sources the integrations catalog.
package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// CategoryFilter selects catalog items by unified category.
type CategoryFilter string

const (
	CategoryAll        CategoryFilter = "all"
	CategorySkill      CategoryFilter = CategoryFilter(models.CategorySkill)
	CategoryDataSource CategoryFilter = CategoryFilter(models.CategoryDataSource)
)

// SortOrder names a catalog ordering.
type SortOrder string

const (
	SortPopular SortOrder = "popular"
	SortRecent  SortOrder = "recent"
	SortNewest  SortOrder = "newest"
)

// LegacyCategories maps raw feed categories to unified categories for items
// that do not carry unifiedCategory. Keys are lower case.
var LegacyCategories = map[string]models.Category{
	"data source": models.CategoryDataSource,
	"output":      models.CategorySkill,
	"other":       models.CategorySkill,
}

// ResolveCategory returns the unified category of an item.
// Unknown legacy categories resolve to data-source.
func ResolveCategory(item models.CatalogItem) models.Category {
	switch item.UnifiedCategory {
	case models.CategorySkill, models.CategoryDataSource:
		return item.UnifiedCategory
	}
	if c, ok := LegacyCategories[strings.ToLower(strings.TrimSpace(item.Category))]; ok {
		return c
	}
	return models.CategoryDataSource
}

// FilterState is the user-controlled filter configuration.
// An empty Domain means no domain filter.
type FilterState struct {
	Search          string         `json:"search"`
	Category        CategoryFilter `json:"category"`
	Domain          string         `json:"domain,omitempty"`
	IncludeExternal bool           `json:"includeExternal"`
	SortBy          SortOrder      `json:"sortBy"`
}

// DefaultFilterState returns the state of a freshly opened catalog.
func DefaultFilterState() FilterState {
	return FilterState{
		Category:        CategoryAll,
		IncludeExternal: true,
		SortBy:          SortPopular,
	}
}

func (s FilterState) ClearSearch() FilterState {
	s.Search = ""
	return s
}

func (s FilterState) ClearCategory() FilterState {
	s.Category = CategoryAll
	return s
}

func (s FilterState) ClearDomain() FilterState {
	s.Domain = ""
	return s
}

// Reset clears every filter and restores the default sort.
func (s FilterState) Reset() FilterState {
	return DefaultFilterState()
}

// HasActiveFilters reports whether any filter narrows the catalog.
func (s FilterState) HasActiveFilters() bool {
	return strings.TrimSpace(s.Search) != "" ||
		(s.Category != CategoryAll && s.Category != "") ||
		s.Domain != "" ||
		!s.IncludeExternal
}

// Result is the output of FilterAndSort.
type Result struct {
	Filtered         []models.CatalogItem
	AvailableDomains []string
	ResultCount      int
	HasActiveFilters bool
}

// FilterAndSort applies the filter state to items and orders the survivors.
// Domain facets are computed from universe, which is usually the unfiltered
// catalog. Inputs are never mutated.
func FilterAndSort(items, universe []models.CatalogItem, state FilterState) Result {
	query := foldString(strings.TrimSpace(state.Search))

	filtered := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(foldString(item.Name), query) {
			continue
		}
		if state.Category != CategoryAll && state.Category != "" &&
			ResolveCategory(item) != models.Category(state.Category) {
			continue
		}
		if state.Domain != "" && item.Domain != state.Domain {
			continue
		}
		if !state.IncludeExternal && item.DataOrigin == models.OriginExternal {
			continue
		}
		filtered = append(filtered, item)
	}

	sortItems(filtered, state.SortBy)

	return Result{
		Filtered:         filtered,
		AvailableDomains: AvailableDomains(universe),
		ResultCount:      len(filtered),
		HasActiveFilters: state.HasActiveFilters(),
	}
}

// AvailableDomains returns the sorted, distinct, non-empty domains of items.
func AvailableDomains(items []models.CatalogItem) []string {
	domains := make([]string, 0)
	for _, item := range items {
		if item.Domain != "" {
			domains = append(domains, item.Domain)
		}
	}
	slices.Sort(domains)
	return slices.Compact(domains)
}

func sortItems(items []models.CatalogItem, order SortOrder) {
	switch order {
	case SortPopular:
		slices.SortStableFunc(items, func(a, b models.CatalogItem) int {
			return cmp.Compare(b.TotalStars, a.TotalStars)
		})
	case SortRecent:
		slices.SortStableFunc(items, func(a, b models.CatalogItem) int {
			return compareDatesDesc(a.ModificationDate, b.ModificationDate)
		})
	case SortNewest:
		slices.SortStableFunc(items, func(a, b models.CatalogItem) int {
			return compareDatesDesc(a.CreationDate, b.CreationDate)
		})
	}
}

// compareDatesDesc orders later dates first; missing dates sort last.
func compareDatesDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

// foldString builds a fresh caser per call since casers are not safe for
// concurrent use.
func foldString(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
