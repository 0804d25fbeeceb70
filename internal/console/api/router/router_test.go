package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/api/router"
	servicetesting "github.com/agentregistry-dev/agentconsole/internal/console/service/testing"
)

func TestRegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))
	fake := servicetesting.NewFakeConsole()

	var extraPrefix string
	router.RegisterRoutes(api, fake, &v0.VersionBody{Version: "dev"}, &router.RouteOptions{
		Mux: mux,
		ExtraRoutes: func(_ huma.API, pathPrefix string) {
			extraPrefix = pathPrefix
		},
	})
	router.RegisterAPIRoutes(api, fake)
	assert.Equal(t, "/v0", extraPrefix)

	paths := api.OpenAPI().Paths
	for _, p := range []string{
		"/v0/ping",
		"/v0/version",
		"/v0/health",
		"/v0/catalog",
		"/v0/catalog/{key}/favorite",
		"/v0/agents",
		"/v0/agents/{agentId}",
		"/v0/agents/{agentId}/versions",
		"/v0/agents/{agentId}/copies",
		"/v0/agents/{agentId}/versions/{versionId}/restore",
		"/v0/projects",
		"/v0/projects/{projectId}",
		"/v0/projects/{projectId}/draft",
		"/v0/projects/{projectId}/metrics",
		"/v0/flags",
		"/v0/flags/{name}",
		"/api/listProjects",
		"/api/agentDetails",
		"/api/update-project",
	} {
		assert.Contains(t, paths, p)
	}

	req := httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRoutes_NilOptions(t *testing.T) {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))

	assert.NotPanics(t, func() {
		router.RegisterRoutes(api, servicetesting.NewFakeConsole(), &v0.VersionBody{}, nil)
	})
}
