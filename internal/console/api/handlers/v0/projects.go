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

// ProjectDetailInput represents the project path parameter
type ProjectDetailInput struct {
	ProjectID string `path:"projectId" json:"projectId" doc:"Project ID"`
}

type CreateProjectRequest struct {
	Body models.CreateProjectInput
}

type UpdateProjectRequest struct {
	ProjectID string `path:"projectId" json:"projectId" doc:"Project ID"`
	Body      models.UpdateProjectInput
}

type SaveDraftRequest struct {
	ProjectID string `path:"projectId" json:"projectId" doc:"Project ID"`
	Body      models.ProjectDraft
}

func projectList(projects []*models.Project) models.ProjectListResponse {
	out := models.ProjectListResponse{Projects: make([]models.Project, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, *p)
	}
	out.Count = len(out.Projects)
	return out
}

// RegisterProjectsEndpoints registers project, draft auto-save and metrics endpoints
func RegisterProjectsEndpoints(api huma.API, pathPrefix string, console service.ConsoleService) {
	tags := []string{"projects"}
	suffix := strings.ReplaceAll(pathPrefix, "/", "-")

	huma.Register(api, huma.Operation{
		OperationID: "list-projects" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/projects",
		Summary:     "List projects",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*types.Response[models.ProjectListResponse], error) {
		projects, err := console.ListProjects(ctx)
		if err != nil {
			return nil, consoleError(err, "Failed to list projects")
		}
		return &types.Response[models.ProjectListResponse]{Body: projectList(projects)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project" + suffix,
		Method:        http.MethodPost,
		Path:          pathPrefix + "/projects",
		Summary:       "Create project",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateProjectRequest) (*types.Response[models.Project], error) {
		project, err := console.CreateProject(ctx, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to create project")
		}
		return &types.Response[models.Project]{Body: *project}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/projects/{projectId}",
		Summary:     "Get project",
		Tags:        tags,
	}, func(ctx context.Context, input *ProjectDetailInput) (*types.Response[models.Project], error) {
		project, err := console.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, consoleError(err, "Failed to get project")
		}
		return &types.Response[models.Project]{Body: *project}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project" + suffix,
		Method:      http.MethodPut,
		Path:        pathPrefix + "/projects/{projectId}",
		Summary:     "Update project",
		Tags:        tags,
	}, func(ctx context.Context, input *UpdateProjectRequest) (*types.Response[models.Project], error) {
		project, err := console.UpdateProject(ctx, input.ProjectID, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to update project")
		}
		return &types.Response[models.Project]{Body: *project}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "save-project-draft" + suffix,
		Method:        http.MethodPut,
		Path:          pathPrefix + "/projects/{projectId}/draft",
		Summary:       "Auto-save project draft",
		Description:   "Record the latest draft. The save runs once edits pause for the auto-save delay.",
		Tags:          tags,
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *SaveDraftRequest) (*types.Response[models.DraftStatus], error) {
		status, err := console.SaveProjectDraft(ctx, input.ProjectID, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to save project draft")
		}
		return &types.Response[models.DraftStatus]{Body: *status}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project-draft" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/projects/{projectId}/draft",
		Summary:     "Get draft auto-save status",
		Tags:        tags,
	}, func(ctx context.Context, input *ProjectDetailInput) (*types.Response[models.DraftStatus], error) {
		status, err := console.GetDraftStatus(ctx, input.ProjectID)
		if err != nil {
			return nil, consoleError(err, "Failed to get draft status")
		}
		return &types.Response[models.DraftStatus]{Body: *status}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project-metrics" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/projects/{projectId}/metrics",
		Summary:     "Get project metrics",
		Description: "Query every metrics endpoint in parallel. Endpoints that fail are listed in failed and report zero values.",
		Tags:        tags,
	}, func(ctx context.Context, input *ProjectDetailInput) (*types.Response[models.ProjectMetrics], error) {
		m, err := console.GetProjectMetrics(ctx, input.ProjectID)
		if err != nil {
			return nil, consoleError(err, "Failed to get project metrics")
		}
		return &types.Response[models.ProjectMetrics]{Body: *m}, nil
	})
}
