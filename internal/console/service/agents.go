package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/versions"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

const initialVersionMessage = "Initial version"

func (s *consoleServiceImpl) ListAgents(ctx context.Context, filter *database.AgentFilter) ([]*models.Agent, error) {
	return s.db.ListAgents(ctx, nil, filter)
}

func (s *consoleServiceImpl) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	agent, err := s.db.GetAgent(ctx, nil, agentID)
	if err != nil {
		return nil, notFound(err, ErrAgentNotFound)
	}
	return agent, nil
}

func (s *consoleServiceImpl) CreateAgent(ctx context.Context, in *models.CreateAgentInput) (*models.Agent, error) {
	if in == nil || strings.TrimSpace(in.Config.Name) == "" {
		return nil, validationError("agent name is required")
	}
	if err := versions.ValidateSnapshot(in.Config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	author := "system"
	if u, err := s.requireUser(ctx); err == nil {
		author = authorName(u)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = initialVersionMessage
	}

	return database.InTransactionT(ctx, s.db, func(ctx context.Context, tx pgx.Tx) (*models.Agent, error) {
		if in.ProjectID != "" {
			if _, err := s.db.GetProject(ctx, tx, in.ProjectID); err != nil {
				return nil, notFound(err, ErrProjectNotFound)
			}
		}
		agent := s.newAgent(in.ProjectID, in.Config, message, author)
		if err := s.db.CreateAgent(ctx, tx, &agent); err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
		return &agent, nil
	})
}

// newAgent builds an agent whose history holds one version of snapshot.
func (s *consoleServiceImpl) newAgent(projectID string, snapshot models.AgentConfigSnapshot, message, author string) models.Agent {
	v := s.versions.CreateVersion(message, snapshot, author)
	agent := models.Agent{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		CreatedAt: v.CreatedAt,
	}
	return versions.Commit(agent, v)
}

func (s *consoleServiceImpl) UpdateAgent(ctx context.Context, agentID string, in *models.UpdateAgentInput) (*models.Agent, error) {
	if in == nil {
		return nil, validationError("update body is required")
	}
	return database.InTransactionT(ctx, s.db, func(ctx context.Context, tx pgx.Tx) (*models.Agent, error) {
		stored, err := s.db.GetAgent(ctx, tx, agentID)
		if err != nil {
			return nil, notFound(err, ErrAgentNotFound)
		}
		next := versions.CloneAgent(*stored)

		if in.ConfigVersions != nil {
			if err := versions.ValidateExtension(stored.ConfigVersions, in.ConfigVersions); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			next.ConfigVersions = make([]models.ConfigVersion, len(in.ConfigVersions))
			for i, v := range in.ConfigVersions {
				v.Snapshot = versions.CloneSnapshot(v.Snapshot)
				next.ConfigVersions[i] = v
			}
		}
		if in.CurrentVersionID != nil {
			next.CurrentVersionID = *in.CurrentVersionID
		}
		if err := versions.ValidateHistory(next.ConfigVersions, next.CurrentVersionID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if next.CurrentVersionID != stored.CurrentVersionID {
			if current, ok := versions.Current(&next); ok {
				next.Config = versions.CloneSnapshot(current.Snapshot)
				next.Name = current.Snapshot.Name
				next.Description = current.Snapshot.Description
			}
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return nil, validationError("agent name is required")
			}
			next.Name = *in.Name
		}
		if in.Description != nil {
			next.Description = *in.Description
		}
		next.UpdatedAt = s.now().UTC()

		if err := s.db.UpdateAgent(ctx, tx, &next); err != nil {
			return nil, notFound(err, ErrAgentNotFound)
		}
		return &next, nil
	})
}

func (s *consoleServiceImpl) DeleteAgent(ctx context.Context, agentID string) error {
	if err := s.db.DeleteAgent(ctx, nil, agentID); err != nil {
		return notFound(err, ErrAgentNotFound)
	}
	return nil
}

func (s *consoleServiceImpl) ListVersions(ctx context.Context, agentID string) (*models.AgentVersionsResponse, error) {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	history := agent.ConfigVersions
	if history == nil {
		history = []models.ConfigVersion{}
	}
	return &models.AgentVersionsResponse{
		AgentID:          agent.ID,
		CurrentVersionID: agent.CurrentVersionID,
		Versions:         history,
	}, nil
}

func (s *consoleServiceImpl) SaveVersion(ctx context.Context, agentID string, in *models.SaveVersionInput) (*models.Agent, error) {
	u, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, validationError("draft is required")
	}
	if err := versions.ValidateSnapshot(in.Draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if strings.TrimSpace(in.Draft.Name) == "" {
		return nil, validationError("agent name is required")
	}

	agent, err := database.InTransactionT(ctx, s.db, func(ctx context.Context, tx pgx.Tx) (*models.Agent, error) {
		stored, err := s.db.GetAgent(ctx, tx, agentID)
		if err != nil {
			return nil, notFound(err, ErrAgentNotFound)
		}

		base := stored.Config
		if current, ok := versions.Current(stored); ok {
			base = current.Snapshot
			if versions.Equal(current.Snapshot, in.Draft) {
				return nil, ErrNoChanges
			}
		}

		message := strings.TrimSpace(in.Message)
		if message == "" {
			message = versions.DescribeChanges(versions.ChangedFields(base, in.Draft))
		}

		next := versions.Commit(*stored, s.versions.CreateVersion(message, in.Draft, authorName(u)))
		if err := s.db.UpdateAgent(ctx, tx, &next); err != nil {
			return nil, notFound(err, ErrAgentNotFound)
		}
		return &next, nil
	})
	if err != nil {
		return nil, err
	}

	s.telemetry.VersionCreated(ctx)
	logging.Log(ctx, logging.ServiceEventLog, zapcore.InfoLevel, "agent version saved",
		zap.String("agent_id", agent.ID),
		zap.String("version_id", agent.CurrentVersionID),
		zap.Int("history_len", len(agent.ConfigVersions)))
	return agent, nil
}

func (s *consoleServiceImpl) SaveCopy(ctx context.Context, agentID string, in *models.SaveCopyInput) (*models.Agent, error) {
	u, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, validationError("draft is required")
	}
	if err := versions.ValidateSnapshot(in.Draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	agent, err := database.InTransactionT(ctx, s.db, func(ctx context.Context, tx pgx.Tx) (*models.Agent, error) {
		source, err := s.db.GetAgent(ctx, tx, agentID)
		if err != nil {
			return nil, notFound(err, ErrAgentNotFound)
		}
		existing, err := s.db.ListAgents(ctx, tx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list agents: %w", err)
		}
		taken := make(map[string]bool, len(existing))
		for _, a := range existing {
			taken[a.Name] = true
		}

		baseName := in.Draft.Name
		if strings.TrimSpace(baseName) == "" {
			baseName = source.Name
		}
		draft := versions.CloneSnapshot(in.Draft)
		draft.Name = versions.UniqueCopyName(baseName, taken)

		copied := s.newAgent(source.ProjectID, draft, fmt.Sprintf("Copied from %s", source.Name), authorName(u))
		if err := s.db.CreateAgent(ctx, tx, &copied); err != nil {
			return nil, fmt.Errorf("failed to create agent copy: %w", err)
		}
		return &copied, nil
	})
	if err != nil {
		return nil, err
	}

	s.telemetry.CopyCreated(ctx)
	logging.Log(ctx, logging.ServiceEventLog, zapcore.InfoLevel, "agent copied",
		zap.String("source_agent_id", agentID),
		zap.String("agent_id", agent.ID),
		zap.String("name", agent.Name))
	return agent, nil
}

func (s *consoleServiceImpl) RestoreVersion(ctx context.Context, agentID, versionID string) (*models.RestoreVersionResponse, error) {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	draft, ok := versions.RestoreVersion(agent, versionID)
	if !ok {
		return nil, ErrVersionNotFound
	}
	return &models.RestoreVersionResponse{AgentID: agent.ID, VersionID: versionID, Draft: *draft}, nil
}
