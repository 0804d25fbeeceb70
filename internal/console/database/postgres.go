package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// PostgreSQL is an implementation of the Database interface using PostgreSQL
type PostgreSQL struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Executor is an interface for executing queries (satisfied by both pgx.Tx and pgxpool.Pool)
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getExecutor returns the appropriate executor (transaction or pool)
func (db *PostgreSQL) getExecutor(tx pgx.Tx) Executor {
	if tx != nil {
		return tx
	}
	return db.pool
}

// NewPostgreSQL connects to PostgreSQL and applies pending migrations.
func NewPostgreSQL(ctx context.Context, connectionURI string) (*PostgreSQL, error) {
	config, err := pgxpool.ParseConfig(connectionURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnIdleTime = 30 * time.Minute
	config.MaxConnLifetime = 2 * time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection for migrations: %w", err)
	}
	defer conn.Release()

	if err := migrate(ctx, conn.Conn()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return &PostgreSQL{pool: pool, logger: logging.NewLogger("database")}, nil
}

const agentColumns = `id, name, description, project_id, config, current_version_id, created_at, updated_at`

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var a models.Agent
	var configJSON []byte
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.ProjectID, &configJSON, &a.CurrentVersionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &a.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent config: %w", err)
		}
	}
	a.ConfigVersions = []models.ConfigVersion{}
	return &a, nil
}

func (db *PostgreSQL) ListAgents(ctx context.Context, tx pgx.Tx, filter *AgentFilter) ([]*models.Agent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var whereConditions []string
	args := []any{}
	argIndex := 1
	if filter != nil {
		if filter.ProjectID != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("project_id = $%d", argIndex))
			args = append(args, *filter.ProjectID)
			argIndex++
		}
		if filter.SubstringName != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("name ILIKE $%d", argIndex))
			args = append(args, "%"+*filter.SubstringName+"%")
		}
	}

	query := `SELECT ` + agentColumns + ` FROM agents`
	if len(whereConditions) > 0 {
		query += ` WHERE ` + strings.Join(whereConditions, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	executor := db.getExecutor(tx)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	var agents []*models.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}

	for _, a := range agents {
		if a.ConfigVersions, err = db.listVersions(ctx, executor, a.ID); err != nil {
			return nil, err
		}
	}
	return agents, nil
}

func (db *PostgreSQL) GetAgent(ctx context.Context, tx pgx.Tx, agentID string) (*models.Agent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	executor := db.getExecutor(tx)

	a, err := scanAgent(executor.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, agentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if a.ConfigVersions, err = db.listVersions(ctx, executor, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (db *PostgreSQL) listVersions(ctx context.Context, executor Executor, agentID string) ([]models.ConfigVersion, error) {
	rows, err := executor.Query(ctx, `
		SELECT id, message, snapshot, created_by, created_at
		FROM agent_config_versions
		WHERE agent_id = $1
		ORDER BY seq ASC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent versions: %w", err)
	}
	defer rows.Close()

	out := []models.ConfigVersion{}
	for rows.Next() {
		var v models.ConfigVersion
		var snapshotJSON []byte
		if err := rows.Scan(&v.ID, &v.Message, &snapshotJSON, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent version: %w", err)
		}
		if err := json.Unmarshal(snapshotJSON, &v.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent version %s: %w", v.ID, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agent versions: %w", err)
	}
	return out, nil
}

func (db *PostgreSQL) insertVersions(ctx context.Context, executor Executor, agentID string, versions []models.ConfigVersion) error {
	for _, v := range versions {
		snapshotJSON, err := json.Marshal(v.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal version %s: %w", v.ID, err)
		}
		if _, err := executor.Exec(ctx, `
			INSERT INTO agent_config_versions (agent_id, id, message, snapshot, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (agent_id, id) DO NOTHING
		`, agentID, v.ID, v.Message, snapshotJSON, v.CreatedBy, v.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert version %s: %w", v.ID, err)
		}
	}
	return nil
}

func (db *PostgreSQL) CreateAgent(ctx context.Context, tx pgx.Tx, agent *models.Agent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if agent == nil || strings.TrimSpace(agent.ID) == "" || strings.TrimSpace(agent.Name) == "" {
		return ErrInvalidInput
	}
	configJSON, err := json.Marshal(agent.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal agent config: %w", err)
	}

	executor := db.getExecutor(tx)
	if _, err := executor.Exec(ctx, `
		INSERT INTO agents (id, name, description, project_id, config, current_version_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, agent.ID, agent.Name, agent.Description, agent.ProjectID, configJSON, agent.CurrentVersionID, agent.CreatedAt, agent.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	return db.insertVersions(ctx, executor, agent.ID, agent.ConfigVersions)
}

func (db *PostgreSQL) UpdateAgent(ctx context.Context, tx pgx.Tx, agent *models.Agent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if agent == nil || strings.TrimSpace(agent.ID) == "" {
		return ErrInvalidInput
	}
	configJSON, err := json.Marshal(agent.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal agent config: %w", err)
	}

	executor := db.getExecutor(tx)
	result, err := executor.Exec(ctx, `
		UPDATE agents
		SET name = $2, description = $3, project_id = $4, config = $5, current_version_id = $6, updated_at = $7
		WHERE id = $1
	`, agent.ID, agent.Name, agent.Description, agent.ProjectID, configJSON, agent.CurrentVersionID, agent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	var stored int
	if err := executor.QueryRow(ctx, `
		SELECT COUNT(*) FROM agent_config_versions WHERE agent_id = $1
	`, agent.ID).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count agent versions: %w", err)
	}
	return db.insertVersions(ctx, executor, agent.ID, appendedVersions(agent.ConfigVersions, stored))
}

// appendedVersions returns the entries of an append-only history past the
// stored length. The service validates that the stored prefix is unchanged.
func appendedVersions(versions []models.ConfigVersion, stored int) []models.ConfigVersion {
	if stored <= 0 {
		return versions
	}
	if stored >= len(versions) {
		return nil
	}
	return versions[stored:]
}

func (db *PostgreSQL) DeleteAgent(ctx context.Context, tx pgx.Tx, agentID string) error {
	result, err := db.getExecutor(tx).Exec(ctx, `DELETE FROM agents WHERE id = $1`, agentID)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const projectColumns = `id, name, description, owner_id, agent_ids, status, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var agentIDs []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &agentIDs, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(agentIDs) > 0 {
		if err := json.Unmarshal(agentIDs, &p.AgentIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project agent ids: %w", err)
		}
	}
	if p.AgentIDs == nil {
		p.AgentIDs = []string{}
	}
	return &p, nil
}

func (db *PostgreSQL) ListProjects(ctx context.Context, tx pgx.Tx) ([]*models.Project, error) {
	rows, err := db.getExecutor(tx).Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

func (db *PostgreSQL) GetProject(ctx context.Context, tx pgx.Tx, projectID string) (*models.Project, error) {
	p, err := scanProject(db.getExecutor(tx).QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (db *PostgreSQL) CreateProject(ctx context.Context, tx pgx.Tx, project *models.Project) error {
	if project == nil || strings.TrimSpace(project.ID) == "" || strings.TrimSpace(project.Name) == "" {
		return ErrInvalidInput
	}
	agentIDs, err := json.Marshal(nonNil(project.AgentIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal project agent ids: %w", err)
	}
	if _, err := db.getExecutor(tx).Exec(ctx, `
		INSERT INTO projects (id, name, description, owner_id, agent_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, project.ID, project.Name, project.Description, project.OwnerID, agentIDs, project.Status, project.CreatedAt, project.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (db *PostgreSQL) UpdateProject(ctx context.Context, tx pgx.Tx, project *models.Project) error {
	if project == nil || strings.TrimSpace(project.ID) == "" {
		return ErrInvalidInput
	}
	agentIDs, err := json.Marshal(nonNil(project.AgentIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal project agent ids: %w", err)
	}
	result, err := db.getExecutor(tx).Exec(ctx, `
		UPDATE projects
		SET name = $2, description = $3, owner_id = $4, agent_ids = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, project.ID, project.Name, project.Description, project.OwnerID, agentIDs, project.Status, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// InTransaction executes a function within a database transaction
func (db *PostgreSQL) InTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:contextcheck // rollback must run even if the request is cancelled
	defer func() {
		rollbackCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rollbackCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			db.logger.Warn("failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *PostgreSQL) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the database connection
func (db *PostgreSQL) Close() error {
	db.pool.Close()
	return nil
}
