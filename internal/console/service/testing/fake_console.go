// Package testing provides test utilities for the console service.
package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

var errNotConfigured = errors.New("fake console: not configured")

// FakeConsole is a configurable fake implementation of service.ConsoleService for testing.
// Data fields back the simple cases; function hooks take precedence when set.
type FakeConsole struct {
	mu sync.Mutex

	// Data fields for simple data-driven tests
	CatalogPage *models.CatalogPage
	Catalog     []models.CatalogItem
	Agents      []*models.Agent
	Projects    []*models.Project
	Flags       []models.FeatureFlag
	HealthErr   error

	// Call counters for verification
	SaveVersionCalls int
	SetFlagCalls     int

	QueryCatalogFn      func(ctx context.Context, query models.CatalogQuery) (*models.CatalogPage, error)
	ListCatalogItemsFn  func(ctx context.Context) ([]models.CatalogItem, error)
	ToggleFavoriteFn    func(ctx context.Context, key string) (*models.FavoriteResponse, error)
	ListAgentsFn        func(ctx context.Context, filter *database.AgentFilter) ([]*models.Agent, error)
	GetAgentFn          func(ctx context.Context, agentID string) (*models.Agent, error)
	CreateAgentFn       func(ctx context.Context, in *models.CreateAgentInput) (*models.Agent, error)
	UpdateAgentFn       func(ctx context.Context, agentID string, in *models.UpdateAgentInput) (*models.Agent, error)
	DeleteAgentFn       func(ctx context.Context, agentID string) error
	ListVersionsFn      func(ctx context.Context, agentID string) (*models.AgentVersionsResponse, error)
	SaveVersionFn       func(ctx context.Context, agentID string, in *models.SaveVersionInput) (*models.Agent, error)
	SaveCopyFn          func(ctx context.Context, agentID string, in *models.SaveCopyInput) (*models.Agent, error)
	RestoreVersionFn    func(ctx context.Context, agentID, versionID string) (*models.RestoreVersionResponse, error)
	ListProjectsFn      func(ctx context.Context) ([]*models.Project, error)
	GetProjectFn        func(ctx context.Context, projectID string) (*models.Project, error)
	CreateProjectFn     func(ctx context.Context, in *models.CreateProjectInput) (*models.Project, error)
	UpdateProjectFn     func(ctx context.Context, projectID string, in *models.UpdateProjectInput) (*models.Project, error)
	SaveProjectDraftFn  func(ctx context.Context, projectID string, draft *models.ProjectDraft) (*models.DraftStatus, error)
	GetDraftStatusFn    func(ctx context.Context, projectID string) (*models.DraftStatus, error)
	GetProjectMetricsFn func(ctx context.Context, projectID string) (*models.ProjectMetrics, error)
	SetFlagFn           func(ctx context.Context, name, value string) (*models.FeatureFlag, error)
}

// NewFakeConsole creates an empty FakeConsole.
func NewFakeConsole() *FakeConsole {
	return &FakeConsole{}
}

func (f *FakeConsole) QueryCatalog(ctx context.Context, query models.CatalogQuery) (*models.CatalogPage, error) {
	if f.QueryCatalogFn != nil {
		return f.QueryCatalogFn(ctx, query)
	}
	if f.CatalogPage != nil {
		return f.CatalogPage, nil
	}
	return &models.CatalogPage{Items: []models.CatalogItem{}}, nil
}

func (f *FakeConsole) ListCatalogItems(ctx context.Context) ([]models.CatalogItem, error) {
	if f.ListCatalogItemsFn != nil {
		return f.ListCatalogItemsFn(ctx)
	}
	return f.Catalog, nil
}

func (f *FakeConsole) ToggleFavorite(ctx context.Context, key string) (*models.FavoriteResponse, error) {
	if f.ToggleFavoriteFn != nil {
		return f.ToggleFavoriteFn(ctx, key)
	}
	return &models.FavoriteResponse{Key: key, Favorited: true}, nil
}

func (f *FakeConsole) ListAgents(ctx context.Context, filter *database.AgentFilter) ([]*models.Agent, error) {
	if f.ListAgentsFn != nil {
		return f.ListAgentsFn(ctx, filter)
	}
	return f.Agents, nil
}

func (f *FakeConsole) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	if f.GetAgentFn != nil {
		return f.GetAgentFn(ctx, agentID)
	}
	for _, a := range f.Agents {
		if a.ID == agentID {
			return a, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *FakeConsole) CreateAgent(ctx context.Context, in *models.CreateAgentInput) (*models.Agent, error) {
	if f.CreateAgentFn != nil {
		return f.CreateAgentFn(ctx, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) UpdateAgent(ctx context.Context, agentID string, in *models.UpdateAgentInput) (*models.Agent, error) {
	if f.UpdateAgentFn != nil {
		return f.UpdateAgentFn(ctx, agentID, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) DeleteAgent(ctx context.Context, agentID string) error {
	if f.DeleteAgentFn != nil {
		return f.DeleteAgentFn(ctx, agentID)
	}
	return errNotConfigured
}

func (f *FakeConsole) ListVersions(ctx context.Context, agentID string) (*models.AgentVersionsResponse, error) {
	if f.ListVersionsFn != nil {
		return f.ListVersionsFn(ctx, agentID)
	}
	a, err := f.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &models.AgentVersionsResponse{AgentID: a.ID, CurrentVersionID: a.CurrentVersionID, Versions: a.ConfigVersions}, nil
}

func (f *FakeConsole) SaveVersion(ctx context.Context, agentID string, in *models.SaveVersionInput) (*models.Agent, error) {
	f.mu.Lock()
	f.SaveVersionCalls++
	f.mu.Unlock()
	if f.SaveVersionFn != nil {
		return f.SaveVersionFn(ctx, agentID, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) SaveCopy(ctx context.Context, agentID string, in *models.SaveCopyInput) (*models.Agent, error) {
	if f.SaveCopyFn != nil {
		return f.SaveCopyFn(ctx, agentID, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) RestoreVersion(ctx context.Context, agentID, versionID string) (*models.RestoreVersionResponse, error) {
	if f.RestoreVersionFn != nil {
		return f.RestoreVersionFn(ctx, agentID, versionID)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if f.ListProjectsFn != nil {
		return f.ListProjectsFn(ctx)
	}
	return f.Projects, nil
}

func (f *FakeConsole) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	if f.GetProjectFn != nil {
		return f.GetProjectFn(ctx, projectID)
	}
	for _, p := range f.Projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *FakeConsole) CreateProject(ctx context.Context, in *models.CreateProjectInput) (*models.Project, error) {
	if f.CreateProjectFn != nil {
		return f.CreateProjectFn(ctx, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) UpdateProject(ctx context.Context, projectID string, in *models.UpdateProjectInput) (*models.Project, error) {
	if f.UpdateProjectFn != nil {
		return f.UpdateProjectFn(ctx, projectID, in)
	}
	return nil, errNotConfigured
}

func (f *FakeConsole) SaveProjectDraft(ctx context.Context, projectID string, draft *models.ProjectDraft) (*models.DraftStatus, error) {
	if f.SaveProjectDraftFn != nil {
		return f.SaveProjectDraftFn(ctx, projectID, draft)
	}
	return &models.DraftStatus{ProjectID: projectID, Pending: true}, nil
}

func (f *FakeConsole) GetDraftStatus(ctx context.Context, projectID string) (*models.DraftStatus, error) {
	if f.GetDraftStatusFn != nil {
		return f.GetDraftStatusFn(ctx, projectID)
	}
	return &models.DraftStatus{ProjectID: projectID}, nil
}

func (f *FakeConsole) GetProjectMetrics(ctx context.Context, projectID string) (*models.ProjectMetrics, error) {
	if f.GetProjectMetricsFn != nil {
		return f.GetProjectMetricsFn(ctx, projectID)
	}
	return &models.ProjectMetrics{ProjectID: projectID}, nil
}

func (f *FakeConsole) ListFlags(context.Context) (*models.FeatureFlagsResponse, error) {
	return &models.FeatureFlagsResponse{Flags: f.Flags}, nil
}

func (f *FakeConsole) SetFlag(ctx context.Context, name, value string) (*models.FeatureFlag, error) {
	f.mu.Lock()
	f.SetFlagCalls++
	f.mu.Unlock()
	if f.SetFlagFn != nil {
		return f.SetFlagFn(ctx, name, value)
	}
	return &models.FeatureFlag{Name: name, Value: value}, nil
}

func (f *FakeConsole) Health(context.Context) error {
	return f.HealthErr
}

func (f *FakeConsole) Close() error {
	return nil
}
