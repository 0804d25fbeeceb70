package v0

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

// LegacyAgentDetailsInput represents the query of the dashboard's agent details call
type LegacyAgentDetailsInput struct {
	AgentID string `query:"agentId" json:"agentId" doc:"Agent ID" required:"true"`
}

// LegacyUpdateProjectBody is the body of the dashboard's project update call
type LegacyUpdateProjectBody struct {
	ProjectID string `json:"projectId" doc:"Project ID"`
	models.UpdateProjectInput
}

type LegacyUpdateProjectRequest struct {
	Body LegacyUpdateProjectBody
}

// RegisterLegacyEndpoints registers the unversioned routes the dashboard still calls.
func RegisterLegacyEndpoints(api huma.API, console service.ConsoleService) {
	tags := []string{"legacy"}

	huma.Register(api, huma.Operation{
		OperationID: "legacy-list-projects",
		Method:      http.MethodGet,
		Path:        "/api/listProjects",
		Summary:     "List projects (legacy)",
		Tags:        tags,
		Deprecated:  true,
	}, func(ctx context.Context, _ *struct{}) (*types.Response[models.ProjectListResponse], error) {
		projects, err := console.ListProjects(ctx)
		if err != nil {
			return nil, consoleError(err, "Failed to list projects")
		}
		return &types.Response[models.ProjectListResponse]{Body: projectList(projects)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "legacy-agent-details",
		Method:      http.MethodGet,
		Path:        "/api/agentDetails",
		Summary:     "Get agent details (legacy)",
		Tags:        tags,
		Deprecated:  true,
	}, func(ctx context.Context, input *LegacyAgentDetailsInput) (*types.Response[models.Agent], error) {
		agent, err := console.GetAgent(ctx, input.AgentID)
		if err != nil {
			return nil, consoleError(err, "Failed to get agent details")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "legacy-update-project",
		Method:      http.MethodPost,
		Path:        "/api/update-project",
		Summary:     "Update project (legacy)",
		Tags:        tags,
		Deprecated:  true,
	}, func(ctx context.Context, input *LegacyUpdateProjectRequest) (*types.Response[models.Project], error) {
		project, err := console.UpdateProject(ctx, input.Body.ProjectID, &input.Body.UpdateProjectInput)
		if err != nil {
			return nil, consoleError(err, "Failed to update project")
		}
		return &types.Response[models.Project]{Body: *project}, nil
	})
}
