package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentregistry-dev/agentconsole/internal/console/flags"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

func (s *consoleServiceImpl) ListFlags(context.Context) (*models.FeatureFlagsResponse, error) {
	return &models.FeatureFlagsResponse{Flags: s.flagValues().List()}, nil
}

func (s *consoleServiceImpl) SetFlag(ctx context.Context, name, value string) (*models.FeatureFlag, error) {
	if s.flags == nil {
		return nil, fmt.Errorf("feature flag store is not configured")
	}
	if err := s.flags.Set(ctx, name, value); err != nil {
		if errors.Is(err, flags.ErrUnknownFlag) || errors.Is(err, flags.ErrInvalidValue) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, err
	}
	s.telemetry.FlagUpdated(ctx, name)
	logging.Log(ctx, logging.ServiceEventLog, zapcore.InfoLevel, "feature flag updated",
		zap.String("flag", name), zap.String("value", value))

	for _, f := range s.flags.Snapshot().List() {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", flags.ErrUnknownFlag, name)
}
