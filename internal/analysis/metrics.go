package analysis

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stage counters complement the pipeline spans. With no meter provider
// installed these are no-ops.
var (
	stageTotal  metric.Int64Counter
	stageErrors metric.Int64Counter
)

func init() {
	meter := otel.Meter(tracerName)
	stageTotal, _ = meter.Int64Counter("analysis.stage.total",
		metric.WithDescription("Pipeline stage executions."))
	stageErrors, _ = meter.Int64Counter("analysis.stage.errors",
		metric.WithDescription("Pipeline stage failures."))
}

func countStage(ctx context.Context, stage string, err error) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	stageTotal.Add(ctx, 1, attrs)
	if err != nil {
		stageErrors.Add(ctx, 1, attrs)
	}
}
