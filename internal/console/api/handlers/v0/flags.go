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

type SetFlagRequest struct {
	Name string `path:"name" json:"name" doc:"Flag name" example:"studioMinStars"`
	Body models.SetFeatureFlagInput
}

// RegisterFlagsEndpoints registers the feature flag endpoints
func RegisterFlagsEndpoints(api huma.API, pathPrefix string, console service.ConsoleService) {
	tags := []string{"flags"}
	suffix := strings.ReplaceAll(pathPrefix, "/", "-")

	huma.Register(api, huma.Operation{
		OperationID: "list-flags" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/flags",
		Summary:     "List feature flags",
		Description: "Every flag read from one snapshot",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*types.Response[models.FeatureFlagsResponse], error) {
		resp, err := console.ListFlags(ctx)
		if err != nil {
			return nil, consoleError(err, "Failed to list feature flags")
		}
		return &types.Response[models.FeatureFlagsResponse]{Body: *resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-flag" + suffix,
		Method:      http.MethodPut,
		Path:        pathPrefix + "/flags/{name}",
		Summary:     "Set feature flag",
		Description: "Validate, persist and publish a flag value given as a string (\"true\", \"5\")",
		Tags:        tags,
	}, func(ctx context.Context, input *SetFlagRequest) (*types.Response[models.FeatureFlag], error) {
		flag, err := console.SetFlag(ctx, input.Name, input.Body.Value)
		if err != nil {
			return nil, consoleError(err, "Failed to set feature flag")
		}
		return &types.Response[models.FeatureFlag]{Body: *flag}, nil
	})
}
