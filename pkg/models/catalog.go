package models

import "time"

// Category is the unified classification of a catalog item.
type Category string

const (
	CategorySkill      Category = "skill"
	CategoryDataSource Category = "data-source"
)

// DataOrigin tells whether an integration is maintained in-house or by a third party.
type DataOrigin string

const (
	OriginInternal DataOrigin = "internal"
	OriginExternal DataOrigin = "external"
)

// CatalogOwner identifies the publisher of a catalog item.
type CatalogOwner struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// CatalogItem is one integration in the catalog.
// Domain is precomputed by the feed; an empty value means the item has no domain.
type CatalogItem struct {
	Key              string        `json:"key" yaml:"key"`
	Name             string        `json:"name" yaml:"name"`
	Description      string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category         string        `json:"category,omitempty" yaml:"category,omitempty"`
	UnifiedCategory  Category      `json:"unifiedCategory,omitempty" yaml:"unifiedCategory,omitempty"`
	DataOrigin       DataOrigin    `json:"dataOrigin,omitempty" yaml:"dataOrigin,omitempty"`
	Domain           string        `json:"domain,omitempty" yaml:"domain,omitempty"`
	TotalStars       int           `json:"total_stars" yaml:"total_stars"`
	Favorited        bool          `json:"favorited" yaml:"favorited,omitempty"`
	Owner            *CatalogOwner `json:"owner,omitempty" yaml:"owner,omitempty"`
	AuthType         string        `json:"auth_type,omitempty" yaml:"auth_type,omitempty"`
	CreationDate     *time.Time    `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	ModificationDate *time.Time    `json:"modification_date,omitempty" yaml:"modification_date,omitempty"`
	UsageCount       *int          `json:"usage_count,omitempty" yaml:"usage_count,omitempty"`
}

// CatalogQuery carries the filter, sort and paging parameters of a catalog request.
type CatalogQuery struct {
	Search          string `json:"search,omitempty"`
	Category        string `json:"category,omitempty"`
	Domain          string `json:"domain,omitempty"`
	IncludeExternal bool   `json:"includeExternal"`
	SortBy          string `json:"sortBy,omitempty"`
	Page            int    `json:"page"`
	PageSize        int    `json:"pageSize"`
	Mode            string `json:"mode,omitempty"`
}

// CatalogFacets describes the filter state that produced a page.
type CatalogFacets struct {
	AvailableDomains []string `json:"availableDomains"`
	ResultCount      int      `json:"resultCount"`
	HasActiveFilters bool     `json:"hasActiveFilters"`
}

// CatalogPageMetadata contains the paging info of a catalog page.
type CatalogPageMetadata struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	MinStars   int `json:"minStars"`
}

// CatalogPage is the response for a catalog query.
type CatalogPage struct {
	Items    []CatalogItem       `json:"items"`
	Facets   CatalogFacets       `json:"facets"`
	Metadata CatalogPageMetadata `json:"metadata"`
}

// FavoriteResponse reports the favorite state of a catalog item after a toggle.
type FavoriteResponse struct {
	Key       string `json:"key"`
	Favorited bool   `json:"favorited"`
}
