package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Common database errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabase      = errors.New("database error")
)

// AgentFilter narrows ListAgents. Nil fields match everything.
type AgentFilter struct {
	ProjectID     *string
	SubstringName *string
}

// Database is the storage interface of the console.
// Every method accepts an optional transaction; nil runs on the pool.
type Database interface {
	ListAgents(ctx context.Context, tx pgx.Tx, filter *AgentFilter) ([]*models.Agent, error)
	// GetAgent returns the agent with its full version history in commit order.
	GetAgent(ctx context.Context, tx pgx.Tx, agentID string) (*models.Agent, error)
	CreateAgent(ctx context.Context, tx pgx.Tx, agent *models.Agent) error
	// UpdateAgent stores the mutable agent fields and appends history entries
	// that are not stored yet. Stored entries are never modified.
	UpdateAgent(ctx context.Context, tx pgx.Tx, agent *models.Agent) error
	DeleteAgent(ctx context.Context, tx pgx.Tx, agentID string) error

	ListProjects(ctx context.Context, tx pgx.Tx) ([]*models.Project, error)
	GetProject(ctx context.Context, tx pgx.Tx, projectID string) (*models.Project, error)
	CreateProject(ctx context.Context, tx pgx.Tx, project *models.Project) error
	UpdateProject(ctx context.Context, tx pgx.Tx, project *models.Project) error

	InTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// InTransactionT is a generic helper that wraps InTransaction for functions returning a value.
func InTransactionT[T any](ctx context.Context, db Database, fn func(ctx context.Context, tx pgx.Tx) (T, error)) (T, error) {
	var result T
	err := db.InTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		result, err = fn(ctx, tx)
		return err
	})
	return result, err
}
