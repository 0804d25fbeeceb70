package v0_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	servicetesting "github.com/agentregistry-dev/agentconsole/internal/console/service/testing"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func newTestAPI(t *testing.T, fake *servicetesting.FakeConsole) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))
	v0.RegisterPingEndpoint(api, "/v0")
	v0.RegisterVersionEndpoint(api, "/v0", &v0.VersionBody{Version: "1.2.3", GitCommit: "abc", BuildTime: "now"})
	v0.RegisterHealthEndpoint(api, "/v0", fake)
	v0.RegisterCatalogEndpoints(api, "/v0", fake)
	v0.RegisterAgentsEndpoints(api, "/v0", fake)
	v0.RegisterProjectsEndpoints(api, "/v0", fake)
	v0.RegisterFlagsEndpoints(api, "/v0", fake)
	v0.RegisterLegacyEndpoints(api, fake)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func sampleDraft() map[string]any {
	return map[string]any{
		"name": "Support Bot",
		"modelConfig": map[string]any{
			"model":       "gpt-4o",
			"temperature": 0.2,
			"maxTokens":   512,
			"topP":        1,
		},
	}
}

func TestPingVersionHealth(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pong":true}`, w.Body.String())

	w = do(t, mux, http.MethodGet, "/v0/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)

	w = do(t, mux, http.MethodGet, "/v0/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	fake.HealthErr = errors.New("db down")
	w = do(t, mux, http.MethodGet, "/v0/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryCatalog_PassesDefaults(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	var got models.CatalogQuery
	fake.QueryCatalogFn = func(_ context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
		got = q
		return &models.CatalogPage{
			Items:    []models.CatalogItem{{Key: "slack", Name: "Slack", TotalStars: 9}},
			Facets:   models.CatalogFacets{AvailableDomains: []string{"slack.com"}, ResultCount: 1},
			Metadata: models.CatalogPageMetadata{Page: 1, PageSize: 12, TotalPages: 1, TotalItems: 1},
		}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "all", got.Category)
	assert.True(t, got.IncludeExternal)
	assert.Equal(t, "popular", got.SortBy)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 12, got.PageSize)
	assert.Contains(t, w.Body.String(), `"key":"slack"`)
	assert.Contains(t, w.Body.String(), `"availableDomains":["slack.com"]`)

	w = do(t, mux, http.MethodGet, "/v0/catalog?search=sl&category=skill&includeExternal=false&sortBy=newest&page=2&pageSize=5&mode=dev", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.CatalogQuery{
		Search: "sl", Category: "skill", IncludeExternal: false, SortBy: "newest", Page: 2, PageSize: 5, Mode: "dev",
	}, got)
}

func TestQueryCatalog_Errors(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/catalog?category=output", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, mux, http.MethodGet, "/v0/catalog?pageSize=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fake.QueryCatalogFn = func(context.Context, models.CatalogQuery) (*models.CatalogPage, error) {
		return nil, fmt.Errorf("%w: timeout", service.ErrCatalogUnavailable)
	}
	w = do(t, mux, http.MethodGet, "/v0/catalog", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Catalog feed unavailable")
}

func TestToggleFavorite_StatusMapping(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodPost, "/v0/catalog/slack/favorite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"slack","favorited":true}`, w.Body.String())

	fake.ToggleFavoriteFn = func(context.Context, string) (*models.FavoriteResponse, error) {
		return nil, service.ErrUnauthenticated
	}
	w = do(t, mux, http.MethodPost, "/v0/catalog/slack/favorite", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAgentNotFoundIsDistinct(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.Agents = []*models.Agent{{ID: "a-1", Name: "Support Bot"}}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/agents/a-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodGet, "/v0/agents/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Not found")

	w = do(t, mux, http.MethodGet, "/api/agentDetails?agentId=a-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Support Bot"`)

	w = do(t, mux, http.MethodGet, "/v0/agents", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestRestoreVersion_NotFoundMessages(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.RestoreVersionFn = func(_ context.Context, agentID, versionID string) (*models.RestoreVersionResponse, error) {
		switch {
		case agentID != "a-1":
			return nil, service.ErrAgentNotFound
		case versionID != "v1":
			return nil, service.ErrVersionNotFound
		}
		return &models.RestoreVersionResponse{AgentID: agentID, VersionID: versionID, Draft: models.AgentConfigSnapshot{Name: "Old"}}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodPost, "/v0/agents/a-1/versions/v1/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Old"`)

	w = do(t, mux, http.MethodPost, "/v0/agents/a-1/versions/v9/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Version not found")

	w = do(t, mux, http.MethodPost, "/v0/agents/a-9/versions/v1/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Agent not found")
}

func TestSaveVersion_StatusMapping(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	var calls int
	fake.SaveVersionFn = func(_ context.Context, agentID string, in *models.SaveVersionInput) (*models.Agent, error) {
		calls++
		if calls > 1 {
			return nil, service.ErrNoChanges
		}
		return &models.Agent{ID: agentID, Name: in.Draft.Name, CurrentVersionID: "v2"}, nil
	}
	mux := newTestAPI(t, fake)

	body := map[string]any{"draft": sampleDraft(), "message": "tune"}
	w := do(t, mux, http.MethodPost, "/v0/agents/a-1/versions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"currentVersionId":"v2"`)

	w = do(t, mux, http.MethodPost, "/v0/agents/a-1/versions", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "No changes to save")
	assert.Equal(t, 2, fake.SaveVersionCalls)
}

func TestUpdateAgent_ValidationIs422(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.UpdateAgentFn = func(context.Context, string, *models.UpdateAgentInput) (*models.Agent, error) {
		return nil, fmt.Errorf("%w: current version does not reference a history entry: v9", service.ErrValidation)
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodPatch, "/v0/agents/a-1", map[string]any{"currentVersionId": "v9"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Current version does not reference a history entry")
}

func TestSaveCopy(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.SaveCopyFn = func(_ context.Context, _ string, in *models.SaveCopyInput) (*models.Agent, error) {
		return &models.Agent{ID: "a-2", Name: in.Draft.Name + " (Copy)"}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodPost, "/v0/agents/a-1/copies", map[string]any{"draft": sampleDraft()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Support Bot (Copy)"`)
}

func TestProjects(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.Projects = []*models.Project{{ID: "p-1", Name: "Launch", AgentIDs: []string{}}}
	fake.CreateProjectFn = func(_ context.Context, in *models.CreateProjectInput) (*models.Project, error) {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: project name is required", service.ErrValidation)
		}
		return &models.Project{ID: "p-2", Name: in.Name}, nil
	}
	fake.UpdateProjectFn = func(_ context.Context, id string, in *models.UpdateProjectInput) (*models.Project, error) {
		if id != "p-1" {
			return nil, service.ErrProjectNotFound
		}
		return &models.Project{ID: id, Name: *in.Name}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/projects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, mux, http.MethodGet, "/api/listProjects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Launch"`)

	w = do(t, mux, http.MethodPost, "/v0/projects", map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Project name is required")

	w = do(t, mux, http.MethodPost, "/v0/projects", map[string]any{"name": "New"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, mux, http.MethodPut, "/v0/projects/p-1", map[string]any{"name": "Renamed"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodPost, "/api/update-project", map[string]any{"projectId": "p-1", "name": "Legacy"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Legacy"`)

	w = do(t, mux, http.MethodPost, "/api/update-project", map[string]any{"projectId": "p-9", "name": "Legacy"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Project not found")
}

func TestProjectDraftAndMetrics(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.GetProjectMetricsFn = func(_ context.Context, id string) (*models.ProjectMetrics, error) {
		return &models.ProjectMetrics{ProjectID: id, Accuracy: 0.5, Failed: []string{"errors"}}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodPut, "/v0/projects/p-1/draft", map[string]any{"name": "Launch"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"pending":true`)

	w = do(t, mux, http.MethodGet, "/v0/projects/p-1/draft", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodGet, "/v0/projects/p-1/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"failed":["errors"]`)
	assert.Contains(t, w.Body.String(), `"accuracy":0.5`)
}

func TestFlags(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.Flags = []models.FeatureFlag{{Name: "studioMinStars", Kind: "int", Value: 0, Default: 0}}
	fake.SetFlagFn = func(_ context.Context, name, value string) (*models.FeatureFlag, error) {
		if value == "-1" {
			return nil, fmt.Errorf("%w: studioMinStars expects a non-negative integer", service.ErrValidation)
		}
		return &models.FeatureFlag{Name: name, Kind: "int", Value: 5, Default: 0}, nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodGet, "/v0/flags", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"studioMinStars"`)

	w = do(t, mux, http.MethodPut, "/v0/flags/studioMinStars", map[string]any{"value": "5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"value":5`)

	w = do(t, mux, http.MethodPut, "/v0/flags/studioMinStars", map[string]any{"value": "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 2, fake.SetFlagCalls)
}

func TestDeleteAgent(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	fake.DeleteAgentFn = func(_ context.Context, id string) error {
		if id != "a-1" {
			return service.ErrAgentNotFound
		}
		return nil
	}
	mux := newTestAPI(t, fake)

	w := do(t, mux, http.MethodDelete, "/v0/agents/a-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Agent deleted successfully")

	w = do(t, mux, http.MethodDelete, "/v0/agents/a-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
