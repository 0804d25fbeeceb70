package database

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/agentregistry-dev/agentconsole/internal/console/versions"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Memory is an in-process Database used for development and tests.
// InTransaction serializes callers; it does not roll back on error.
type Memory struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	agents       map[string]models.Agent
	agentOrder   []string
	projects     map[string]models.Project
	projectOrder []string
}

func NewMemory() *Memory {
	return &Memory{
		agents:   make(map[string]models.Agent),
		projects: make(map[string]models.Project),
	}
}

func (m *Memory) ListAgents(ctx context.Context, _ pgx.Tx, filter *AgentFilter) ([]*models.Agent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Agent
	for _, id := range m.agentOrder {
		a := m.agents[id]
		if filter != nil {
			if filter.ProjectID != nil && a.ProjectID != *filter.ProjectID {
				continue
			}
			if filter.SubstringName != nil &&
				!strings.Contains(strings.ToLower(a.Name), strings.ToLower(*filter.SubstringName)) {
				continue
			}
		}
		clone := versions.CloneAgent(a)
		out = append(out, &clone)
	}
	return out, nil
}

func (m *Memory) GetAgent(ctx context.Context, _ pgx.Tx, agentID string) (*models.Agent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[agentID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := versions.CloneAgent(a)
	return &clone, nil
}

func (m *Memory) CreateAgent(ctx context.Context, _ pgx.Tx, agent *models.Agent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if agent == nil || strings.TrimSpace(agent.ID) == "" || strings.TrimSpace(agent.Name) == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.agents[agent.ID]; exists {
		return ErrAlreadyExists
	}
	m.agents[agent.ID] = versions.CloneAgent(*agent)
	m.agentOrder = append(m.agentOrder, agent.ID)
	return nil
}

func (m *Memory) UpdateAgent(ctx context.Context, _ pgx.Tx, agent *models.Agent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if agent == nil || strings.TrimSpace(agent.ID) == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.agents[agent.ID]
	if !ok {
		return ErrNotFound
	}

	next := versions.CloneAgent(*agent)
	// Keep stored entries as written and append only the unseen ones.
	history := stored.ConfigVersions
	for _, v := range next.ConfigVersions {
		if _, exists := versions.Find(history, v.ID); !exists {
			history = versions.Append(history, v)
		}
	}
	next.ConfigVersions = history
	next.CreatedAt = stored.CreatedAt
	m.agents[agent.ID] = next
	return nil
}

func (m *Memory) DeleteAgent(ctx context.Context, _ pgx.Tx, agentID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[agentID]; !ok {
		return ErrNotFound
	}
	delete(m.agents, agentID)
	m.agentOrder = slices.DeleteFunc(m.agentOrder, func(id string) bool { return id == agentID })
	return nil
}

func cloneProject(p models.Project) models.Project {
	p.AgentIDs = slices.Clone(nonNil(p.AgentIDs))
	return p
}

func (m *Memory) ListProjects(ctx context.Context, _ pgx.Tx) ([]*models.Project, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		p := cloneProject(m.projects[id])
		out = append(out, &p)
	}
	return out, nil
}

func (m *Memory) GetProject(ctx context.Context, _ pgx.Tx, projectID string) (*models.Project, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneProject(p)
	return &clone, nil
}

func (m *Memory) CreateProject(ctx context.Context, _ pgx.Tx, project *models.Project) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if project == nil || strings.TrimSpace(project.ID) == "" || strings.TrimSpace(project.Name) == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[project.ID]; exists {
		return ErrAlreadyExists
	}
	m.projects[project.ID] = cloneProject(*project)
	m.projectOrder = append(m.projectOrder, project.ID)
	return nil
}

func (m *Memory) UpdateProject(ctx context.Context, _ pgx.Tx, project *models.Project) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if project == nil || strings.TrimSpace(project.ID) == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.projects[project.ID]
	if !ok {
		return ErrNotFound
	}
	next := cloneProject(*project)
	next.CreatedAt = stored.CreatedAt
	m.projects[project.ID] = next
	return nil
}

func (m *Memory) InTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Close() error { return nil }
