package models

import "time"

const (
	ProjectStatusDraft  = "draft"
	ProjectStatusActive = "active"
)

// Project groups agents that are operated together.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"`
	AgentIDs    []string  `json:"agentIds"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectDraft is the editable part of a project.
type ProjectDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AgentIDs    []string `json:"agentIds,omitempty"`
}

// CreateProjectInput defines inputs for project creation.
type CreateProjectInput struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AgentIDs    []string `json:"agentIds,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// UpdateProjectInput defines inputs for project updates.
type UpdateProjectInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	AgentIDs    []string `json:"agentIds,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// DraftStatus reports the auto-save state of a project draft.
type DraftStatus struct {
	ProjectID   string     `json:"projectId"`
	Pending     bool       `json:"pending"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

// ProjectListResponse is the list response for projects.
type ProjectListResponse struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
}

// ProjectMetrics aggregates the per-endpoint metrics of a project.
// Failed lists the endpoints whose values defaulted to zero.
type ProjectMetrics struct {
	ProjectID    string   `json:"projectId"`
	Accuracy     float64  `json:"accuracy"`
	SuccessRate  float64  `json:"success_rate"`
	TotalRuns    float64  `json:"total_runs"`
	Efficiency   float64  `json:"efficiency"`
	AvgLatencyMs float64  `json:"avg_latency_ms"`
	ErrorRate    float64  `json:"error_rate"`
	ErrorCount   float64  `json:"error_count"`
	Throughput   float64  `json:"throughput"`
	Failed       []string `json:"failed,omitempty"`
}
