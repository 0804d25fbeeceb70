package service

import (
	"context"
	"errors"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Service errors. Handlers translate them to HTTP statuses.
var (
	ErrAgentNotFound       = errors.New("agent not found")
	ErrVersionNotFound     = errors.New("version not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrCatalogItemNotFound = errors.New("integration not found")
	ErrNoChanges           = errors.New("no changes to save")
	ErrValidation          = errors.New("validation failed")
	ErrCatalogUnavailable  = errors.New("catalog feed unavailable")
	ErrUnauthenticated     = session.ErrUnauthenticated
)

// ConsoleService defines the operations behind the console API, CLI and MCP bridge.
type ConsoleService interface {
	// QueryCatalog filters, sorts and threshold-paginates the integrations catalog.
	QueryCatalog(ctx context.Context, query models.CatalogQuery) (*models.CatalogPage, error)
	// ListCatalogItems returns the normalized catalog without filtering or paging.
	ListCatalogItems(ctx context.Context) ([]models.CatalogItem, error)
	// ToggleFavorite flips the favorite mark of a catalog item for the current session.
	ToggleFavorite(ctx context.Context, key string) (*models.FavoriteResponse, error)

	ListAgents(ctx context.Context, filter *database.AgentFilter) ([]*models.Agent, error)
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)
	CreateAgent(ctx context.Context, in *models.CreateAgentInput) (*models.Agent, error)
	// UpdateAgent applies a partial update. A new history must extend the stored one.
	UpdateAgent(ctx context.Context, agentID string, in *models.UpdateAgentInput) (*models.Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error
	ListVersions(ctx context.Context, agentID string) (*models.AgentVersionsResponse, error)
	// SaveVersion commits the draft as a new version and moves the current pointer to it.
	SaveVersion(ctx context.Context, agentID string, in *models.SaveVersionInput) (*models.Agent, error)
	// SaveCopy creates a new agent from the draft under a unique copy name.
	SaveCopy(ctx context.Context, agentID string, in *models.SaveCopyInput) (*models.Agent, error)
	// RestoreVersion returns the snapshot of a version as a new draft without committing it.
	RestoreVersion(ctx context.Context, agentID, versionID string) (*models.RestoreVersionResponse, error)

	ListProjects(ctx context.Context) ([]*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	CreateProject(ctx context.Context, in *models.CreateProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID string, in *models.UpdateProjectInput) (*models.Project, error)
	// SaveProjectDraft records the latest draft and schedules a debounced save.
	SaveProjectDraft(ctx context.Context, projectID string, draft *models.ProjectDraft) (*models.DraftStatus, error)
	GetDraftStatus(ctx context.Context, projectID string) (*models.DraftStatus, error)
	// GetProjectMetrics fans out to every metrics endpoint and never fails on partial outages.
	GetProjectMetrics(ctx context.Context, projectID string) (*models.ProjectMetrics, error)

	ListFlags(ctx context.Context) (*models.FeatureFlagsResponse, error)
	SetFlag(ctx context.Context, name, value string) (*models.FeatureFlag, error)

	// Health checks the storage backend.
	Health(ctx context.Context) error
	// Close flushes pending draft saves.
	Close() error
}
