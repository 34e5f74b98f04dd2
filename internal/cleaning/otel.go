package cleaning

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fraudcli/internal/infrastructure"
)

const (
	// TracerName identifies spans produced by the cleaning stage loop.
	TracerName = "fraudcli.cleaning"
)

// StageTracer provides OpenTelemetry instrumentation for stage execution.
// A nil StageTracer is valid and produces no instrumentation, so the
// pipeline behaves identically with telemetry disabled.
type StageTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewStageTracer creates a stage tracer backed by the given providers.
func NewStageTracer(providers *infrastructure.OTelProviders) (*StageTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &StageTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}, nil
}

// StartStage opens a span for one cleaning stage.
func (t *StageTracer) StartStage(ctx context.Context, stage Stage) (context.Context, trace.Span) {
	if t == nil {
		return ctx, nil
	}
	return t.tracer.Start(ctx, fmt.Sprintf("cleaning.stage.%s", stage.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.id", stage.ID()),
			attribute.String("stage.name", stage.Name()),
		),
	)
}

// EndStage records stage completion on the span and the pipeline metrics.
func (t *StageTracer) EndStage(ctx context.Context, span trace.Span, stage Stage, duration time.Duration, rowsIn, rowsOut int, err error) {
	if t == nil {
		return
	}
	infrastructure.RecordStageMetrics(ctx, t.metrics, stage.ID(), duration, rowsIn, rowsOut)

	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("stage.rows_in", rowsIn),
		attribute.Int("stage.rows_out", rowsOut),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)

	status := "success"
	if err != nil {
		status = "failure"
	}
	infrastructure.AddSpanEvent(ctx, "stage.completed", map[string]interface{}{
		"stage_id": stage.ID(),
		"status":   status,
		"duration": duration.Seconds(),
		"rows_in":  rowsIn,
		"rows_out": rowsOut,
	})

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(
			attribute.String("stage_id", stage.ID()),
			attribute.String("error.type", "stage_execution_error"),
		))
		span.SetStatus(codes.Error, "stage execution failed")
	} else {
		span.SetStatus(codes.Ok, "stage completed")
	}
	span.End()
}
