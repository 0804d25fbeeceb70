// Package versions manages the append-only configuration history of agents.
package versions

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

var (
	ErrDuplicateVersion  = errors.New("duplicate version id")
	ErrEmptyVersionID    = errors.New("empty version id")
	ErrDanglingPointer   = errors.New("current version does not reference a history entry")
	ErrHistoryRewritten  = errors.New("existing history entries cannot be changed")
	ErrCapabilityInvalid = errors.New("capability values must be strings or booleans")
)

// Manager creates version entries with an injectable clock and id source.
type Manager struct {
	now   func() time.Time
	newID func(time.Time) string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for createdAt and version ids.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator replaces the default timestamp-plus-suffix id source.
func WithIDGenerator(fn func(time.Time) string) Option {
	return func(m *Manager) { m.newID = fn }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now, newID: defaultID}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultID(t time.Time) string {
	return fmt.Sprintf("v%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

// CreateVersion builds a new history entry holding a deep copy of snapshot.
func (m *Manager) CreateVersion(message string, snapshot models.AgentConfigSnapshot, author string) models.ConfigVersion {
	now := m.now().UTC()
	return models.ConfigVersion{
		ID:        m.newID(now),
		Message:   message,
		Snapshot:  CloneSnapshot(snapshot),
		CreatedBy: author,
		CreatedAt: now,
	}
}

// RestoreVersion returns a deep copy of the snapshot stored under versionID,
// or false when the agent has no such version. The agent is not modified.
func RestoreVersion(agent *models.Agent, versionID string) (*models.AgentConfigSnapshot, bool) {
	if agent == nil {
		return nil, false
	}
	v, ok := Find(agent.ConfigVersions, versionID)
	if !ok {
		return nil, false
	}
	restored := CloneSnapshot(v.Snapshot)
	return &restored, true
}

// Find looks up a version by id.
func Find(history []models.ConfigVersion, versionID string) (models.ConfigVersion, bool) {
	for _, v := range history {
		if v.ID == versionID {
			return v, true
		}
	}
	return models.ConfigVersion{}, false
}

// Current returns the version the agent's pointer references.
func Current(agent *models.Agent) (models.ConfigVersion, bool) {
	if agent == nil || agent.CurrentVersionID == "" {
		return models.ConfigVersion{}, false
	}
	return Find(agent.ConfigVersions, agent.CurrentVersionID)
}

// Append returns a new history with v added at the end. The input slice is
// never written to.
func Append(history []models.ConfigVersion, v models.ConfigVersion) []models.ConfigVersion {
	out := make([]models.ConfigVersion, 0, len(history)+1)
	out = append(out, history...)
	return append(out, v)
}

// Commit returns a copy of agent with v appended, the pointer moved to v and
// the live configuration replaced by v's snapshot.
func Commit(agent models.Agent, v models.ConfigVersion) models.Agent {
	agent.ConfigVersions = Append(agent.ConfigVersions, v)
	agent.CurrentVersionID = v.ID
	agent.Config = CloneSnapshot(v.Snapshot)
	agent.Name = v.Snapshot.Name
	agent.Description = v.Snapshot.Description
	agent.UpdatedAt = v.CreatedAt
	return agent
}

// ValidateHistory checks id uniqueness and that currentID, when set,
// references an entry.
func ValidateHistory(history []models.ConfigVersion, currentID string) error {
	seen := make(map[string]struct{}, len(history))
	for i, v := range history {
		if v.ID == "" {
			return fmt.Errorf("%w at position %d", ErrEmptyVersionID, i)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateVersion, v.ID)
		}
		seen[v.ID] = struct{}{}
		if err := ValidateSnapshot(v.Snapshot); err != nil {
			return fmt.Errorf("version %s: %w", v.ID, err)
		}
	}
	if currentID != "" {
		if _, ok := seen[currentID]; !ok {
			return fmt.Errorf("%w: %s", ErrDanglingPointer, currentID)
		}
	}
	return nil
}

// ValidateExtension checks that next keeps every entry of stored unchanged and
// in the same position.
func ValidateExtension(stored, next []models.ConfigVersion) error {
	if len(next) < len(stored) {
		return ErrHistoryRewritten
	}
	for i, v := range stored {
		if next[i].ID != v.ID || !Equal(next[i].Snapshot, v.Snapshot) || next[i].Message != v.Message {
			return fmt.Errorf("%w: entry %s", ErrHistoryRewritten, v.ID)
		}
	}
	return nil
}

// ValidateSnapshot checks the value types of capabilities.
func ValidateSnapshot(s models.AgentConfigSnapshot) error {
	for k, v := range s.Capabilities {
		switch v.(type) {
		case string, bool:
		default:
			return fmt.Errorf("%w: %s", ErrCapabilityInvalid, k)
		}
	}
	return nil
}

// CloneSnapshot returns a deep copy of s.
func CloneSnapshot(s models.AgentConfigSnapshot) models.AgentConfigSnapshot {
	out := s
	out.Tags = slices.Clone(s.Tags)
	out.Skills = slices.Clone(s.Skills)
	out.Security = slices.Clone(s.Security)
	out.Capabilities = maps.Clone(s.Capabilities)
	return out
}

// CloneAgent returns a deep copy of a.
func CloneAgent(a models.Agent) models.Agent {
	out := a
	out.Config = CloneSnapshot(a.Config)
	out.ConfigVersions = make([]models.ConfigVersion, len(a.ConfigVersions))
	for i, v := range a.ConfigVersions {
		v.Snapshot = CloneSnapshot(v.Snapshot)
		out.ConfigVersions[i] = v
	}
	return out
}
