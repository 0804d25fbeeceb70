package v0

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

// CatalogQueryInput represents the filter, sort and paging parameters of the catalog
type CatalogQueryInput struct {
	Search          string `query:"search" json:"search,omitempty" doc:"Case-insensitive substring match on the integration name" example:"slack"`
	Category        string `query:"category" json:"category,omitempty" doc:"Unified category" default:"all" enum:"all,skill,data-source"`
	Domain          string `query:"domain" json:"domain,omitempty" doc:"Exact match on the integration domain" example:"github.com"`
	IncludeExternal bool   `query:"includeExternal" json:"includeExternal,omitempty" doc:"Include integrations from external feeds" default:"true"`
	SortBy          string `query:"sortBy" json:"sortBy,omitempty" doc:"Sort order (popular, recent, newest); unknown values keep feed order" default:"popular"`
	Page            int    `query:"page" json:"page,omitempty" doc:"1-based page number" default:"1" minimum:"1"`
	PageSize        int    `query:"pageSize" json:"pageSize,omitempty" doc:"Items per page" default:"12" minimum:"1" maximum:"100"`
	Mode            string `query:"mode" json:"mode,omitempty" doc:"Console mode selecting the star threshold (studio, dev)" example:"studio"`
}

// CatalogKeyInput represents the catalog item path parameter
type CatalogKeyInput struct {
	Key string `path:"key" json:"key" doc:"Catalog item key" example:"slack"`
}

func (in *CatalogQueryInput) toQuery() models.CatalogQuery {
	return models.CatalogQuery{
		Search:          in.Search,
		Category:        in.Category,
		Domain:          in.Domain,
		IncludeExternal: in.IncludeExternal,
		SortBy:          in.SortBy,
		Page:            in.Page,
		PageSize:        in.PageSize,
		Mode:            in.Mode,
	}
}

// RegisterCatalogEndpoints registers the integrations catalog endpoints
func RegisterCatalogEndpoints(api huma.API, pathPrefix string, console service.ConsoleService) {
	tags := []string{"catalog"}

	huma.Register(api, huma.Operation{
		OperationID: "query-catalog" + strings.ReplaceAll(pathPrefix, "/", "-"),
		Method:      http.MethodGet,
		Path:        pathPrefix + "/catalog",
		Summary:     "Query the integrations catalog",
		Description: "Filter, sort and threshold-paginate the integrations catalog. Page 1 holds every integration at or above the star threshold when others are shown on following pages.",
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogQueryInput) (*types.Response[models.CatalogPage], error) {
		page, err := console.QueryCatalog(ctx, input.toQuery())
		if err != nil {
			return nil, consoleError(err, "Failed to query catalog")
		}
		return &types.Response[models.CatalogPage]{Body: *page}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-catalog-favorite" + strings.ReplaceAll(pathPrefix, "/", "-"),
		Method:      http.MethodPost,
		Path:        pathPrefix + "/catalog/{key}/favorite",
		Summary:     "Toggle favorite",
		Description: "Flip the favorite mark of an integration for the current session",
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogKeyInput) (*types.Response[models.FavoriteResponse], error) {
		resp, err := console.ToggleFavorite(ctx, input.Key)
		if err != nil {
			return nil, consoleError(err, "Failed to toggle favorite")
		}
		return &types.Response[models.FavoriteResponse]{Body: *resp}, nil
	})
}
