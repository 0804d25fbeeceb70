package versions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func sampleSnapshot() models.AgentConfigSnapshot {
	return models.AgentConfigSnapshot{
		Name:         "Support Agent",
		Description:  "Answers tickets",
		Tags:         []string{"support"},
		ModelConfig:  models.ModelConfig{Model: "gpt-4o", Temperature: 0.2, MaxTokens: 1024, TopP: 1},
		SystemPrompt: "You are helpful.",
		Capabilities: map[string]any{"webSearch": true, "tone": "friendly"},
		Skills:       []models.SkillRef{{Key: "slack"}},
		Security:     []models.SecurityPolicy{{PolicyName: "pii", Enforced: true}},
	}
}

func fixedManager(t *testing.T) *Manager {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return NewManager(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func(time.Time) string {
			n++
			return "v" + string(rune('0'+n))
		}),
	)
}

func TestCreateVersion(t *testing.T) {
	m := fixedManager(t)
	snap := sampleSnapshot()

	v := m.CreateVersion("Initial", snap, "dev")
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "Initial", v.Message)
	assert.Equal(t, "dev", v.CreatedBy)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), v.CreatedAt)

	snap.Tags[0] = "mutated"
	snap.Capabilities["tone"] = "rude"
	assert.Equal(t, "support", v.Snapshot.Tags[0])
	assert.Equal(t, "friendly", v.Snapshot.Capabilities["tone"])
}

func TestCreateVersion_DefaultIDsAreUnique(t *testing.T) {
	m := NewManager()
	seen := make(map[string]bool)
	for range 50 {
		v := m.CreateVersion("", sampleSnapshot(), "dev")
		require.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true
	}
}

func TestRestoreVersion_Isolation(t *testing.T) {
	m := fixedManager(t)
	agent := Commit(models.Agent{ID: "a1"}, m.CreateVersion("Initial", sampleSnapshot(), "dev"))

	restored, ok := RestoreVersion(&agent, "v1")
	require.True(t, ok)

	restored.SystemPrompt = "changed"
	restored.Tags = append(restored.Tags, "extra")
	restored.Skills[0].Key = "changed"
	restored.Capabilities["webSearch"] = false

	stored := agent.ConfigVersions[0].Snapshot
	assert.Equal(t, "You are helpful.", stored.SystemPrompt)
	assert.Equal(t, []string{"support"}, stored.Tags)
	assert.Equal(t, "slack", stored.Skills[0].Key)
	assert.Equal(t, true, stored.Capabilities["webSearch"])
	assert.Equal(t, "slack", agent.Config.Skills[0].Key)
}

func TestRestoreVersion_NotFound(t *testing.T) {
	agent := models.Agent{ID: "a1"}
	restored, ok := RestoreVersion(&agent, "missing")
	assert.False(t, ok)
	assert.Nil(t, restored)

	restored, ok = RestoreVersion(nil, "v1")
	assert.False(t, ok)
	assert.Nil(t, restored)
}

func TestCommit_AppendOnly(t *testing.T) {
	m := fixedManager(t)
	first := Commit(models.Agent{ID: "a1"}, m.CreateVersion("Initial", sampleSnapshot(), "dev"))

	edited := sampleSnapshot()
	edited.SystemPrompt = "Be concise."
	second := Commit(first, m.CreateVersion("Tighten prompt", edited, "dev"))

	require.Len(t, first.ConfigVersions, 1, "earlier agent value keeps its history")
	require.Len(t, second.ConfigVersions, 2)
	assert.Equal(t, "v2", second.CurrentVersionID)
	assert.Equal(t, "Be concise.", second.Config.SystemPrompt)
	assert.Equal(t, first.ConfigVersions[0], second.ConfigVersions[0])

	current, ok := Current(&second)
	require.True(t, ok)
	assert.Equal(t, "Tighten prompt", current.Message)
	assert.NoError(t, ValidateHistory(second.ConfigVersions, second.CurrentVersionID))
}

func TestValidateHistory(t *testing.T) {
	v1 := models.ConfigVersion{ID: "v1"}
	v2 := models.ConfigVersion{ID: "v2"}

	assert.NoError(t, ValidateHistory(nil, ""))
	assert.NoError(t, ValidateHistory([]models.ConfigVersion{v1, v2}, "v1"))
	assert.ErrorIs(t, ValidateHistory([]models.ConfigVersion{v1, v1}, ""), ErrDuplicateVersion)
	assert.ErrorIs(t, ValidateHistory([]models.ConfigVersion{v1}, "v9"), ErrDanglingPointer)
	assert.ErrorIs(t, ValidateHistory([]models.ConfigVersion{{}}, ""), ErrEmptyVersionID)

	bad := models.ConfigVersion{ID: "v3", Snapshot: models.AgentConfigSnapshot{Capabilities: map[string]any{"n": 3}}}
	assert.ErrorIs(t, ValidateHistory([]models.ConfigVersion{bad}, ""), ErrCapabilityInvalid)
}

func TestValidateExtension(t *testing.T) {
	v1 := models.ConfigVersion{ID: "v1", Message: "a", Snapshot: sampleSnapshot()}
	v2 := models.ConfigVersion{ID: "v2", Message: "b"}

	assert.NoError(t, ValidateExtension([]models.ConfigVersion{v1}, []models.ConfigVersion{v1, v2}))
	assert.ErrorIs(t, ValidateExtension([]models.ConfigVersion{v1, v2}, []models.ConfigVersion{v1}), ErrHistoryRewritten)

	rewritten := v1
	rewritten.Message = "changed"
	assert.ErrorIs(t, ValidateExtension([]models.ConfigVersion{v1}, []models.ConfigVersion{rewritten}), ErrHistoryRewritten)
}
