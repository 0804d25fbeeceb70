package v0

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

// HealthBody represents the health check response body
type HealthBody struct {
	Status   string `json:"status" example:"ok" doc:"Overall status"`
	Database string `json:"database" example:"ok" doc:"Storage status"`
}

// RegisterHealthEndpoint registers the health check endpoint
func RegisterHealthEndpoint(api huma.API, pathPrefix string, console service.ConsoleService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health" + strings.ReplaceAll(pathPrefix, "/", "-"),
		Method:      http.MethodGet,
		Path:        pathPrefix + "/health",
		Summary:     "Health check",
		Description: "Reports whether the console and its storage are reachable",
		Tags:        []string{"health"},
	}, func(ctx context.Context, _ *struct{}) (*types.Response[HealthBody], error) {
		if err := console.Health(ctx); err != nil {
			return nil, huma.Error503ServiceUnavailable("Database unavailable", err)
		}
		return &types.Response[HealthBody]{Body: HealthBody{Status: "ok", Database: "ok"}}, nil
	})
}
