package models

import "time"

// ModelConfig holds the LLM parameters of an agent.
type ModelConfig struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"maxTokens" yaml:"maxTokens"`
	TopP        float64 `json:"topP" yaml:"topP"`
}

// SkillRef references a catalog skill attached to an agent.
type SkillRef struct {
	Key         string `json:"key" yaml:"key"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SecurityPolicy is a named policy applied to an agent.
type SecurityPolicy struct {
	PolicyName string `json:"policy_name" yaml:"policy_name"`
	Details    string `json:"details,omitempty" yaml:"details,omitempty"`
	Enforced   bool   `json:"enforced" yaml:"enforced"`
}

// AgentConfigSnapshot is the full editable configuration of an agent.
// Capability values are either strings or booleans.
type AgentConfigSnapshot struct {
	Name            string           `json:"name" yaml:"name"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	Tags            []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	ModelConfig     ModelConfig      `json:"modelConfig" yaml:"modelConfig"`
	SystemPrompt    string           `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	UserPrompt      string           `json:"userPrompt,omitempty" yaml:"userPrompt,omitempty"`
	AssistantPrompt string           `json:"assistantPrompt,omitempty" yaml:"assistantPrompt,omitempty"`
	Capabilities    map[string]any   `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Skills          []SkillRef       `json:"skills,omitempty" yaml:"skills,omitempty"`
	Security        []SecurityPolicy `json:"security,omitempty" yaml:"security,omitempty"`
}

// ConfigVersion is an immutable entry of an agent's configuration history.
type ConfigVersion struct {
	ID        string              `json:"id"`
	Message   string              `json:"message"`
	Snapshot  AgentConfigSnapshot `json:"snapshot"`
	CreatedBy string              `json:"createdBy"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Agent is a configured AI agent with its version history.
type Agent struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	ProjectID        string              `json:"projectId,omitempty"`
	Config           AgentConfigSnapshot `json:"config"`
	ConfigVersions   []ConfigVersion     `json:"configVersions"`
	CurrentVersionID string              `json:"currentVersionId,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// CreateAgentInput defines inputs for agent creation.
type CreateAgentInput struct {
	ProjectID string              `json:"projectId,omitempty"`
	Config    AgentConfigSnapshot `json:"config"`
	Message   string              `json:"message,omitempty"`
}

// UpdateAgentInput is a partial agent update. Nil fields are left untouched.
type UpdateAgentInput struct {
	Name             *string         `json:"name,omitempty"`
	Description      *string         `json:"description,omitempty"`
	ConfigVersions   []ConfigVersion `json:"configVersions,omitempty"`
	CurrentVersionID *string         `json:"currentVersionId,omitempty"`
}

// SaveVersionInput commits the current draft as a new version.
type SaveVersionInput struct {
	Message string              `json:"message,omitempty"`
	Draft   AgentConfigSnapshot `json:"draft"`
}

// SaveCopyInput creates a new agent from the current draft.
type SaveCopyInput struct {
	Draft AgentConfigSnapshot `json:"draft"`
}

// AgentVersionsResponse lists the history of an agent.
type AgentVersionsResponse struct {
	AgentID          string          `json:"agentId"`
	CurrentVersionID string          `json:"currentVersionId,omitempty"`
	Versions         []ConfigVersion `json:"versions"`
}

// RestoreVersionResponse carries the snapshot to load into the editor.
type RestoreVersionResponse struct {
	AgentID   string              `json:"agentId"`
	VersionID string              `json:"versionId"`
	Draft     AgentConfigSnapshot `json:"draft"`
}

// AgentListResponse is the list response for agents.
type AgentListResponse struct {
	Agents []Agent `json:"agents"`
	Count  int     `json:"count"`
}
