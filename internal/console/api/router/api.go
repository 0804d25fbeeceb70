// Package router contains API routing logic
package router

import (
	"github.com/danielgtaylor/huma/v2"

	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
)

// RegisterAPIRoutes registers the unversioned /api routes the dashboard calls
// directly.
func RegisterAPIRoutes(api huma.API, console service.ConsoleService) {
	v0.RegisterLegacyEndpoints(api, console)
}
