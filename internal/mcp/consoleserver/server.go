package consoleserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/internal/version"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

const (
	serverName       = "agentconsole-mcp"
	defaultPageLimit = 12
	maxPageLimit     = 100
)

// NewServer constructs an MCP server that exposes read-only console tools
// backed by the console service. Nothing here mutates agents, projects or flags.
func NewServer(console service.ConsoleService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	addCatalogTools(server, console)
	addAgentTools(server, console)
	addMetaTools(server, console)

	return server
}

type listCatalogArgs struct {
	Search          string `json:"search,omitempty" jsonschema:"case-insensitive substring of the integration name"`
	Category        string `json:"category,omitempty" jsonschema:"all, skill or data-source"`
	Domain          string `json:"domain,omitempty"`
	IncludeExternal *bool  `json:"include_external,omitempty" jsonschema:"defaults to true"`
	SortBy          string `json:"sort_by,omitempty" jsonschema:"popular, recent or newest"`
	Page            int    `json:"page,omitempty"`
	PageSize        int    `json:"page_size,omitempty"`
	Mode            string `json:"mode,omitempty" jsonschema:"studio or dev"`
}

func (a listCatalogArgs) query() models.CatalogQuery {
	includeExternal := true
	if a.IncludeExternal != nil {
		includeExternal = *a.IncludeExternal
	}
	category := a.Category
	if category == "" {
		category = "all"
	}
	page := a.Page
	if page < 1 {
		page = 1
	}
	return models.CatalogQuery{
		Search:          a.Search,
		Category:        category,
		Domain:          a.Domain,
		IncludeExternal: includeExternal,
		SortBy:          a.SortBy,
		Page:            page,
		PageSize:        clampLimit(a.PageSize),
		Mode:            a.Mode,
	}
}

func addCatalogTools(server *mcp.Server, console service.ConsoleService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_catalog",
		Description: "List integrations with search, category, domain and sort filters. Page 1 holds every integration at or above the star threshold.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args listCatalogArgs) (*mcp.CallToolResult, models.CatalogPage, error) {
		page, err := console.QueryCatalog(ctx, args.query())
		if err != nil {
			return nil, models.CatalogPage{}, err
		}
		return nil, *page, nil
	})
}

func addAgentTools(server *mcp.Server, console service.ConsoleService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_agent_versions",
		Description: "Fetch the configuration history of an agent and its current version pointer",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args struct {
		AgentID string `json:"agent_id"`
	}) (*mcp.CallToolResult, models.AgentVersionsResponse, error) {
		if args.AgentID == "" {
			return nil, models.AgentVersionsResponse{}, errors.New("agent_id is required")
		}
		resp, err := console.ListVersions(ctx, args.AgentID)
		if err != nil {
			return nil, models.AgentVersionsResponse{}, err
		}
		return nil, *resp, nil
	})
}

func addMetaTools(server *mcp.Server, console service.ConsoleService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "console_health",
		Description: "Report whether the console and its database are reachable",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, map[string]string, error) {
		if err := console.Health(ctx); err != nil {
			return nil, map[string]string{"status": "degraded", "database": err.Error()}, nil
		}
		return nil, map[string]string{"status": "ok", "database": "ok"}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "console_version",
		Description: "Return console build metadata",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, map[string]string, error) {
		return nil, map[string]string{
			"version":    version.Version,
			"gitCommit":  version.GitCommit,
			"buildDate":  version.BuildDate,
			"serverName": serverName,
		}, nil
	})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
