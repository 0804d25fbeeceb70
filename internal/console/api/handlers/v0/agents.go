package v0

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
	"github.com/agentregistry-dev/agentconsole/pkg/types"
)

// ListAgentsInput represents the input for listing agents
type ListAgentsInput struct {
	ProjectID string `query:"projectId" json:"projectId,omitempty" doc:"Only agents of this project" required:"false"`
	Search    string `query:"search" json:"search,omitempty" doc:"Search agents by name (substring match)" required:"false" example:"support"`
}

// AgentDetailInput represents the agent path parameter
type AgentDetailInput struct {
	AgentID string `path:"agentId" json:"agentId" doc:"Agent ID"`
}

// AgentVersionInput represents the agent and version path parameters
type AgentVersionInput struct {
	AgentID   string `path:"agentId" json:"agentId" doc:"Agent ID"`
	VersionID string `path:"versionId" json:"versionId" doc:"Version ID"`
}

type CreateAgentRequest struct {
	Body models.CreateAgentInput
}

type UpdateAgentRequest struct {
	AgentID string `path:"agentId" json:"agentId" doc:"Agent ID"`
	Body    models.UpdateAgentInput
}

type SaveVersionRequest struct {
	AgentID string `path:"agentId" json:"agentId" doc:"Agent ID"`
	Body    models.SaveVersionInput
}

type SaveCopyRequest struct {
	AgentID string `path:"agentId" json:"agentId" doc:"Agent ID"`
	Body    models.SaveCopyInput
}

func agentList(agents []*models.Agent) models.AgentListResponse {
	out := models.AgentListResponse{Agents: make([]models.Agent, 0, len(agents))}
	for _, a := range agents {
		out.Agents = append(out.Agents, *a)
	}
	out.Count = len(out.Agents)
	return out
}

// RegisterAgentsEndpoints registers agent detail and version history endpoints
func RegisterAgentsEndpoints(api huma.API, pathPrefix string, console service.ConsoleService) {
	tags := []string{"agents"}
	suffix := strings.ReplaceAll(pathPrefix, "/", "-")

	huma.Register(api, huma.Operation{
		OperationID: "list-agents" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/agents",
		Summary:     "List agents",
		Tags:        tags,
	}, func(ctx context.Context, input *ListAgentsInput) (*types.Response[models.AgentListResponse], error) {
		filter := &database.AgentFilter{}
		if input.ProjectID != "" {
			filter.ProjectID = &input.ProjectID
		}
		if input.Search != "" {
			filter.SubstringName = &input.Search
		}
		agents, err := console.ListAgents(ctx, filter)
		if err != nil {
			return nil, consoleError(err, "Failed to list agents")
		}
		return &types.Response[models.AgentListResponse]{Body: agentList(agents)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-agent" + suffix,
		Method:        http.MethodPost,
		Path:          pathPrefix + "/agents",
		Summary:       "Create agent",
		Description:   "Create an agent whose history starts with one version of the given configuration",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateAgentRequest) (*types.Response[models.Agent], error) {
		agent, err := console.CreateAgent(ctx, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to create agent")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-agent" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/agents/{agentId}",
		Summary:     "Get agent details",
		Tags:        tags,
	}, func(ctx context.Context, input *AgentDetailInput) (*types.Response[models.Agent], error) {
		agent, err := console.GetAgent(ctx, input.AgentID)
		if err != nil {
			return nil, consoleError(err, "Failed to get agent details")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-agent" + suffix,
		Method:      http.MethodPatch,
		Path:        pathPrefix + "/agents/{agentId}",
		Summary:     "Update agent",
		Description: "Partially update an agent. A new configVersions list must keep every stored entry unchanged and currentVersionId must reference an entry.",
		Tags:        tags,
	}, func(ctx context.Context, input *UpdateAgentRequest) (*types.Response[models.Agent], error) {
		agent, err := console.UpdateAgent(ctx, input.AgentID, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to update agent")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-agent" + suffix,
		Method:      http.MethodDelete,
		Path:        pathPrefix + "/agents/{agentId}",
		Summary:     "Delete agent",
		Tags:        tags,
	}, func(ctx context.Context, input *AgentDetailInput) (*types.Response[types.EmptyResponse], error) {
		if err := console.DeleteAgent(ctx, input.AgentID); err != nil {
			return nil, consoleError(err, "Failed to delete agent")
		}
		return &types.Response[types.EmptyResponse]{Body: types.EmptyResponse{Message: "Agent deleted successfully"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-agent-versions" + suffix,
		Method:      http.MethodGet,
		Path:        pathPrefix + "/agents/{agentId}/versions",
		Summary:     "List agent versions",
		Description: "Return the configuration history of an agent in commit order with the current pointer",
		Tags:        tags,
	}, func(ctx context.Context, input *AgentDetailInput) (*types.Response[models.AgentVersionsResponse], error) {
		resp, err := console.ListVersions(ctx, input.AgentID)
		if err != nil {
			return nil, consoleError(err, "Failed to list agent versions")
		}
		return &types.Response[models.AgentVersionsResponse]{Body: *resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "save-agent-version" + suffix,
		Method:        http.MethodPost,
		Path:          pathPrefix + "/agents/{agentId}/versions",
		Summary:       "Save version",
		Description:   "Commit the draft as a new version and make it current. Rejected with 409 when the draft equals the current version.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SaveVersionRequest) (*types.Response[models.Agent], error) {
		agent, err := console.SaveVersion(ctx, input.AgentID, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to save version")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "save-agent-copy" + suffix,
		Method:        http.MethodPost,
		Path:          pathPrefix + "/agents/{agentId}/copies",
		Summary:       "Save copy",
		Description:   "Create a new agent from the draft under a unique copy name",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SaveCopyRequest) (*types.Response[models.Agent], error) {
		agent, err := console.SaveCopy(ctx, input.AgentID, &input.Body)
		if err != nil {
			return nil, consoleError(err, "Failed to save copy")
		}
		return &types.Response[models.Agent]{Body: *agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "restore-agent-version" + suffix,
		Method:      http.MethodPost,
		Path:        pathPrefix + "/agents/{agentId}/versions/{versionId}/restore",
		Summary:     "Restore version",
		Description: "Return the snapshot of a version as a new draft. Nothing is committed.",
		Tags:        tags,
	}, func(ctx context.Context, input *AgentVersionInput) (*types.Response[models.RestoreVersionResponse], error) {
		resp, err := console.RestoreVersion(ctx, input.AgentID, input.VersionID)
		if err != nil {
			return nil, consoleError(err, "Failed to restore version")
		}
		return &types.Response[models.RestoreVersionResponse]{Body: *resp}, nil
	})
}
