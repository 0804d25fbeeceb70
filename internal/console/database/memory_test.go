package database

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Compile-time interface checks
var (
	_ Database = (*Memory)(nil)
	_ Database = (*PostgreSQL)(nil)
)

func testAgent(id string) *models.Agent {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := models.AgentConfigSnapshot{Name: "Agent " + id, Tags: []string{"t"}}
	return &models.Agent{
		ID:               id,
		Name:             snap.Name,
		ProjectID:        "p-1",
		Config:           snap,
		ConfigVersions:   []models.ConfigVersion{{ID: "v1", Message: "Initial", Snapshot: snap, CreatedAt: now}},
		CurrentVersionID: "v1",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestMemory_AgentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	require.NoError(t, db.CreateAgent(ctx, nil, testAgent("a1")))
	require.NoError(t, db.CreateAgent(ctx, nil, testAgent("a2")))
	assert.ErrorIs(t, db.CreateAgent(ctx, nil, testAgent("a1")), ErrAlreadyExists)
	assert.ErrorIs(t, db.CreateAgent(ctx, nil, &models.Agent{ID: "x"}), ErrInvalidInput)

	got, err := db.GetAgent(ctx, nil, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Agent a1", got.Name)

	got.Config.Tags[0] = "mutated"
	again, err := db.GetAgent(ctx, nil, "a1")
	require.NoError(t, err)
	assert.Equal(t, "t", again.Config.Tags[0], "reads return copies")

	name := "a2"
	list, err := db.ListAgents(ctx, nil, &AgentFilter{SubstringName: &name})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a2", list[0].ID)

	require.NoError(t, db.DeleteAgent(ctx, nil, "a2"))
	assert.ErrorIs(t, db.DeleteAgent(ctx, nil, "a2"), ErrNotFound)
	_, err = db.GetAgent(ctx, nil, "a2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_UpdateAgentAppendsOnly(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	require.NoError(t, db.CreateAgent(ctx, nil, testAgent("a1")))

	update := testAgent("a1")
	update.ConfigVersions[0].Message = "rewritten"
	update.ConfigVersions = append(update.ConfigVersions, models.ConfigVersion{ID: "v2", Message: "Second"})
	update.CurrentVersionID = "v2"
	require.NoError(t, db.UpdateAgent(ctx, nil, update))

	got, err := db.GetAgent(ctx, nil, "a1")
	require.NoError(t, err)
	require.Len(t, got.ConfigVersions, 2)
	assert.Equal(t, "Initial", got.ConfigVersions[0].Message)
	assert.Equal(t, "Second", got.ConfigVersions[1].Message)
	assert.Equal(t, "v2", got.CurrentVersionID)

	assert.ErrorIs(t, db.UpdateAgent(ctx, nil, testAgent("missing")), ErrNotFound)
}

func TestMemory_Projects(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	p := &models.Project{ID: "p-1", Name: "Support", Status: models.ProjectStatusDraft}
	require.NoError(t, db.CreateProject(ctx, nil, p))
	assert.ErrorIs(t, db.CreateProject(ctx, nil, p), ErrAlreadyExists)

	got, err := db.GetProject(ctx, nil, "p-1")
	require.NoError(t, err)
	assert.NotNil(t, got.AgentIDs)

	got.Name = "Renamed"
	got.AgentIDs = []string{"a1"}
	require.NoError(t, db.UpdateProject(ctx, nil, got))

	list, err := db.ListProjects(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
	assert.Equal(t, []string{"a1"}, list[0].AgentIDs)

	_, err = db.GetProject(ctx, nil, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInTransactionT(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	require.NoError(t, db.CreateAgent(ctx, nil, testAgent("a1")))

	name, err := InTransactionT(ctx, db, func(ctx context.Context, tx pgx.Tx) (string, error) {
		a, err := db.GetAgent(ctx, tx, "a1")
		if err != nil {
			return "", err
		}
		return a.Name, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Agent a1", name)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = InTransactionT(cancelled, db, func(context.Context, pgx.Tx) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].version)
	assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS agent_config_versions")
}
