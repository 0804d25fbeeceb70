package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/agentregistry-dev/agentconsole/internal/console/catalog"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/internal/console/service"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

//go:embed catalog.yaml
var builtinCatalogData []byte

//go:embed demo.yaml
var builtinDemoData []byte

// BuiltinCatalog returns the embedded integrations catalog.
func BuiltinCatalog() ([]models.CatalogItem, error) {
	raw, err := catalog.ParseFeed(builtinCatalogData, "yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse builtin catalog: %w", err)
	}
	items, err := catalog.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("builtin catalog has invalid records: %w", err)
	}
	return items, nil
}

// DemoFile is the layout of the demo seed document.
type DemoFile struct {
	Projects []DemoProject `yaml:"projects"`
}

type DemoProject struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Status      string      `yaml:"status"`
	Agents      []DemoAgent `yaml:"agents"`
}

type DemoAgent struct {
	Message string                     `yaml:"message"`
	Config  models.AgentConfigSnapshot `yaml:"config"`
}

func loadDemoData(data []byte) (*DemoFile, error) {
	var demo DemoFile
	if err := yaml.Unmarshal(data, &demo); err != nil {
		return nil, fmt.Errorf("failed to parse demo seed data: %w", err)
	}
	return &demo, nil
}

// ImportDemoData creates the demo projects and their agents. Projects that
// already exist are left untouched, so repeated imports are no-ops.
func ImportDemoData(ctx context.Context, console service.ConsoleService) error {
	demo, err := loadDemoData(builtinDemoData)
	if err != nil {
		return err
	}
	return importDemo(ctx, console, demo)
}

func importDemo(ctx context.Context, console service.ConsoleService, demo *DemoFile) error {
	var errs []error
	for _, p := range demo.Projects {
		if err := importProject(ctx, console, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func importProject(ctx context.Context, console service.ConsoleService, p DemoProject) error {
	if _, err := console.GetProject(ctx, p.ID); err == nil {
		logging.Log(ctx, logging.SystemLog, zapcore.DebugLevel, "Demo project already present", zap.String("project_id", p.ID))
		return nil
	} else if !errors.Is(err, service.ErrProjectNotFound) {
		return fmt.Errorf("failed to look up demo project %s: %w", p.ID, err)
	}

	if _, err := console.CreateProject(ctx, &models.CreateProjectInput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
	}); err != nil {
		logging.Log(ctx, logging.SystemLog, zapcore.ErrorLevel, "Failed to create demo project", zap.String("project_id", p.ID), zap.Error(err))
		return fmt.Errorf("failed to create demo project %s: %w", p.ID, err)
	}

	agentIDs := make([]string, 0, len(p.Agents))
	for _, a := range p.Agents {
		agent, err := console.CreateAgent(ctx, &models.CreateAgentInput{
			ProjectID: p.ID,
			Config:    a.Config,
			Message:   a.Message,
		})
		if err != nil {
			logging.Log(ctx, logging.SystemLog, zapcore.ErrorLevel, "Failed to create demo agent", zap.String("agent_name", a.Config.Name), zap.Error(err))
			return fmt.Errorf("failed to create demo agent %s: %w", a.Config.Name, err)
		}
		agentIDs = append(agentIDs, agent.ID)
	}

	if _, err := console.UpdateProject(ctx, p.ID, &models.UpdateProjectInput{AgentIDs: agentIDs}); err != nil {
		return fmt.Errorf("failed to attach demo agents to %s: %w", p.ID, err)
	}
	logging.Log(ctx, logging.SystemLog, zapcore.InfoLevel, "Imported demo project", zap.String("project_id", p.ID), zap.Int("agents", len(agentIDs)))
	return nil
}
