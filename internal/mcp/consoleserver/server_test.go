package consoleserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	servicetesting "github.com/agentregistry-dev/agentconsole/internal/console/service/testing"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func connect(t *testing.T, console service.ConsoleService) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewServer(console)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Wait() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })
	return clientSession
}

func decode(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotNil(t, res.StructuredContent)
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestListCatalog(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	var got models.CatalogQuery
	fake.QueryCatalogFn = func(_ context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
		got = q
		return &models.CatalogPage{
			Items:    []models.CatalogItem{{Key: "slack", Name: "Slack", TotalStars: 12}},
			Metadata: models.CatalogPageMetadata{Page: 1, PageSize: 12, TotalPages: 1, TotalItems: 1},
		}, nil
	}
	session := connect(t, fake)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "list_catalog",
		Arguments: map[string]any{"search": "sl", "page_size": 500},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var page models.CatalogPage
	decode(t, res, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "slack", page.Items[0].Key)

	assert.Equal(t, "sl", got.Search)
	assert.Equal(t, "all", got.Category)
	assert.True(t, got.IncludeExternal)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, maxPageLimit, got.PageSize)
}

func TestListCatalog_ExcludeExternal(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	var got models.CatalogQuery
	fake.QueryCatalogFn = func(_ context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
		got = q
		return &models.CatalogPage{Items: []models.CatalogItem{}}, nil
	}
	session := connect(t, fake)

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "list_catalog",
		Arguments: map[string]any{"include_external": false, "category": "skill", "page": 3},
	})
	require.NoError(t, err)
	assert.False(t, got.IncludeExternal)
	assert.Equal(t, "skill", got.Category)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, defaultPageLimit, got.PageSize)
}

func TestGetAgentVersions(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.Agents = []*models.Agent{{
		ID:               "a-1",
		Name:             "Support Bot",
		CurrentVersionID: "v2",
		ConfigVersions: []models.ConfigVersion{
			{ID: "v1", Message: "Initial version"},
			{ID: "v2", Message: "Updated systemPrompt"},
		},
	}}
	session := connect(t, fake)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_agent_versions",
		Arguments: map[string]any{"agent_id": "a-1"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out models.AgentVersionsResponse
	decode(t, res, &out)
	assert.Equal(t, "v2", out.CurrentVersionID)
	assert.Len(t, out.Versions, 2)

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_agent_versions",
		Arguments: map[string]any{"agent_id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_agent_versions",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMetaTools(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	session := connect(t, fake)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "console_health", Arguments: map[string]any{}})
	require.NoError(t, err)
	var health map[string]string
	decode(t, res, &health)
	assert.Equal(t, "ok", health["status"])

	fake.HealthErr = errors.New("connection refused")
	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "console_health", Arguments: map[string]any{}})
	require.NoError(t, err)
	decode(t, res, &health)
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "connection refused", health["database"])

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "console_version", Arguments: map[string]any{}})
	require.NoError(t, err)
	var info map[string]string
	decode(t, res, &info)
	assert.Equal(t, serverName, info["serverName"])
	assert.NotEmpty(t, info["version"])
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultPageLimit, clampLimit(0))
	assert.Equal(t, defaultPageLimit, clampLimit(-4))
	assert.Equal(t, 30, clampLimit(30))
	assert.Equal(t, maxPageLimit, clampLimit(1000))
}
