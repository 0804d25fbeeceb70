package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentregistry-dev/agentconsole/internal/console/database"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/metrics"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

var errProjectNameRequired = fmt.Errorf("%w: project name is required", ErrValidation)

// draftState tracks the auto-save of one project. gen increases with every
// draft; savedGen is the generation last written. writeMu serializes writes
// so a save only ever commits a generation newer than savedGen.
type draftState struct {
	writeMu     sync.Mutex
	draft       models.ProjectDraft
	gen         uint64
	savedGen    uint64
	pending     bool
	lastSavedAt *time.Time
	lastError   string
}

func (s *consoleServiceImpl) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.db.ListProjects(ctx, nil)
}

func (s *consoleServiceImpl) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.db.GetProject(ctx, nil, projectID)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return p, nil
}

func validStatus(status string) bool {
	return status == models.ProjectStatusDraft || status == models.ProjectStatusActive
}

func (s *consoleServiceImpl) CreateProject(ctx context.Context, in *models.CreateProjectInput) (*models.Project, error) {
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, errProjectNameRequired
	}
	status := in.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !validStatus(status) {
		return nil, validationError("unknown project status %q", status)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now().UTC()
	p := &models.Project{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		AgentIDs:    slices.Clone(in.AgentIDs),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.AgentIDs == nil {
		p.AgentIDs = []string{}
	}
	if u, err := s.requireUser(ctx); err == nil {
		p.OwnerID = u.UserID
	}
	if err := s.db.CreateProject(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (s *consoleServiceImpl) UpdateProject(ctx context.Context, projectID string, in *models.UpdateProjectInput) (*models.Project, error) {
	if in == nil {
		return nil, validationError("update body is required")
	}
	return database.InTransactionT(ctx, s.db, func(ctx context.Context, tx pgx.Tx) (*models.Project, error) {
		p, err := s.db.GetProject(ctx, tx, projectID)
		if err != nil {
			return nil, notFound(err, ErrProjectNotFound)
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return nil, errProjectNameRequired
			}
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.AgentIDs != nil {
			p.AgentIDs = slices.Clone(in.AgentIDs)
		}
		if in.Status != nil {
			if !validStatus(*in.Status) {
				return nil, validationError("unknown project status %q", *in.Status)
			}
			p.Status = *in.Status
		}
		p.UpdatedAt = s.now().UTC()
		if err := s.db.UpdateProject(ctx, tx, p); err != nil {
			return nil, notFound(err, ErrProjectNotFound)
		}
		return p, nil
	})
}

func (s *consoleServiceImpl) SaveProjectDraft(ctx context.Context, projectID string, draft *models.ProjectDraft) (*models.DraftStatus, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if draft == nil || strings.TrimSpace(draft.Name) == "" {
		return nil, errProjectNameRequired
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	s.draftMu.Lock()
	st, ok := s.drafts[projectID]
	if !ok {
		st = &draftState{}
		s.drafts[projectID] = st
	}
	st.draft = models.ProjectDraft{
		Name:        draft.Name,
		Description: draft.Description,
		AgentIDs:    slices.Clone(draft.AgentIDs),
	}
	st.gen++
	st.pending = true
	status := st.status(projectID)
	s.draftMu.Unlock()

	requestID := logging.GetRequestID(ctx)
	s.debouncer.Trigger(projectID, func() { s.persistDraft(projectID, requestID) })
	return status, nil
}

func (s *consoleServiceImpl) persistDraft(projectID, requestID string) {
	s.draftMu.Lock()
	st, ok := s.drafts[projectID]
	if !ok {
		s.draftMu.Unlock()
		return
	}
	s.draftMu.Unlock()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	s.draftMu.Lock()
	draft, gen := st.draft, st.gen
	if gen <= st.savedGen {
		s.draftMu.Unlock()
		return
	}
	s.draftMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultDraftSaveTimeout)
	defer cancel()
	if requestID != "" {
		ctx = logging.SetRequestID(ctx, requestID)
	}

	name := draft.Name
	agentIDs := draft.AgentIDs
	if agentIDs == nil {
		agentIDs = []string{}
	}
	_, err := s.UpdateProject(ctx, projectID, &models.UpdateProjectInput{
		Name:        &name,
		Description: &draft.Description,
		AgentIDs:    agentIDs,
	})

	s.draftMu.Lock()
	if gen == st.gen {
		st.pending = false
	}
	if err != nil {
		st.lastError = err.Error()
	} else {
		now := s.now().UTC()
		st.savedGen = gen
		st.lastSavedAt = &now
		st.lastError = ""
	}
	s.draftMu.Unlock()

	s.telemetry.AutosaveCompleted(ctx, err)
	if err != nil {
		level := zapcore.ErrorLevel
		if errors.Is(err, ErrProjectNotFound) {
			level = zapcore.WarnLevel
		}
		logging.Log(ctx, logging.ServiceEventLog, level, "project draft save failed",
			zap.String("project_id", projectID), zap.Error(err))
		return
	}
	logging.Log(ctx, logging.ServiceEventLog, zapcore.InfoLevel, "project draft saved",
		zap.String("project_id", projectID))
}

func (st *draftState) status(projectID string) *models.DraftStatus {
	out := &models.DraftStatus{ProjectID: projectID, Pending: st.pending, LastError: st.lastError}
	if st.lastSavedAt != nil {
		t := *st.lastSavedAt
		out.LastSavedAt = &t
	}
	return out
}

func (s *consoleServiceImpl) GetDraftStatus(ctx context.Context, projectID string) (*models.DraftStatus, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	st, ok := s.drafts[projectID]
	if !ok {
		return &models.DraftStatus{ProjectID: projectID}, nil
	}
	return st.status(projectID), nil
}

func (s *consoleServiceImpl) GetProjectMetrics(ctx context.Context, projectID string) (*models.ProjectMetrics, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	if s.collector == nil {
		out := &models.ProjectMetrics{ProjectID: projectID}
		for _, ep := range metrics.Endpoints {
			out.Failed = append(out.Failed, string(ep))
		}
		return out, nil
	}
	m := s.collector.Collect(ctx, projectID)
	return &m, nil
}
