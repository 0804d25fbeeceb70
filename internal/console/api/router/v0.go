// Package router contains API routing logic
package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
)

// RouteOptions contains optional hooks for route registration.
type RouteOptions struct {
	Mux *http.ServeMux

	// Optional callback for integration-owned route registration.
	ExtraRoutes func(api huma.API, pathPrefix string)
}

// RegisterRoutes registers all API routes under /v0.
func RegisterRoutes(
	api huma.API,
	console service.ConsoleService,
	versionInfo *v0.VersionBody,
	opts *RouteOptions,
) {
	pathPrefix := "/v0"

	v0.RegisterHealthEndpoint(api, pathPrefix, console)
	v0.RegisterPingEndpoint(api, pathPrefix)
	v0.RegisterVersionEndpoint(api, pathPrefix, versionInfo)
	v0.RegisterCatalogEndpoints(api, pathPrefix, console)
	v0.RegisterAgentsEndpoints(api, pathPrefix, console)
	v0.RegisterProjectsEndpoints(api, pathPrefix, console)
	v0.RegisterFlagsEndpoints(api, pathPrefix, console)

	if opts != nil && opts.ExtraRoutes != nil {
		opts.ExtraRoutes(api, pathPrefix)
	}
}
