package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/agentregistry-dev/agentconsole"

// Metrics holds the console's counters. A nil *Metrics records nothing.
type Metrics struct {
	catalogQueries   metric.Int64Counter
	versionsCreated  metric.Int64Counter
	copiesCreated    metric.Int64Counter
	autosaves        metric.Int64Counter
	upstreamFailures metric.Int64Counter
	flagUpdates      metric.Int64Counter
}

// NewMetrics creates the console instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.catalogQueries, err = meter.Int64Counter("console.catalog.queries",
		metric.WithDescription("Catalog filter and pagination requests")); err != nil {
		return nil, fmt.Errorf("catalog queries counter: %w", err)
	}
	if m.versionsCreated, err = meter.Int64Counter("console.agent.versions.created",
		metric.WithDescription("Agent configuration versions saved")); err != nil {
		return nil, fmt.Errorf("versions counter: %w", err)
	}
	if m.copiesCreated, err = meter.Int64Counter("console.agent.copies.created",
		metric.WithDescription("Agents created through save copy")); err != nil {
		return nil, fmt.Errorf("copies counter: %w", err)
	}
	if m.autosaves, err = meter.Int64Counter("console.project.autosaves",
		metric.WithDescription("Debounced project draft saves by result")); err != nil {
		return nil, fmt.Errorf("autosaves counter: %w", err)
	}
	if m.upstreamFailures, err = meter.Int64Counter("console.metrics.upstream.failures",
		metric.WithDescription("Project metric endpoints that did not settle successfully")); err != nil {
		return nil, fmt.Errorf("upstream failures counter: %w", err)
	}
	if m.flagUpdates, err = meter.Int64Counter("console.flags.updates",
		metric.WithDescription("Feature flag writes")); err != nil {
		return nil, fmt.Errorf("flag updates counter: %w", err)
	}
	return m, nil
}

// NoopMetrics returns instruments that discard every measurement.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func (m *Metrics) CatalogQueried(ctx context.Context, mode string, results int) {
	if m == nil {
		return
	}
	m.catalogQueries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("empty", results == 0),
	))
}

func (m *Metrics) VersionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.versionsCreated.Add(ctx, 1)
}

func (m *Metrics) CopyCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.copiesCreated.Add(ctx, 1)
}

func (m *Metrics) AutosaveCompleted(ctx context.Context, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.autosaves.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) UpstreamFailed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.upstreamFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

func (m *Metrics) FlagUpdated(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.flagUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("flag", name)))
}
