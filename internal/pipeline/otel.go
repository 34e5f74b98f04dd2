package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"fraudcli/internal/infrastructure"
)

const (
	// TracerName identifies spans produced by the run orchestrator.
	TracerName = "fraudcli.pipeline"
)

// RunTracer provides OpenTelemetry instrumentation for whole pipeline runs.
// A nil RunTracer is valid and produces no instrumentation.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a run tracer backed by the given providers.
func NewRunTracer(providers *infrastructure.OTelProviders) (*RunTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &RunTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}, nil
}

// StartRun opens the root span for one pipeline run.
func (t *RunTracer) StartRun(ctx context.Context, runID, inputPath string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, nil
	}
	return t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input_path", inputPath),
		),
	)
}

// StartPhase opens a child span for one run phase.
func (t *RunTracer) StartPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, nil
	}
	return t.tracer.Start(ctx, fmt.Sprintf("pipeline.phase.%s", phase),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("phase", phase)),
	)
}

// EndPhase closes a phase span with its outcome.
func (t *RunTracer) EndPhase(ctx context.Context, span trace.Span, err error) {
	if t == nil || span == nil {
		return
	}
	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(
			attribute.String("error.type", "phase_execution_error"),
		))
		span.SetStatus(codes.Error, "phase failed")
	} else {
		span.SetStatus(codes.Ok, "phase completed")
	}
	span.End()
}

// EndRun records the run outcome on the root span and the pipeline metrics.
// result may be nil when the run failed before producing one.
func (t *RunTracer) EndRun(ctx context.Context, span trace.Span, runID string, duration time.Duration, result *RunResult, err error) {
	if t == nil {
		return
	}
	infrastructure.RecordRunMetrics(ctx, t.metrics, runID, duration, err)
	if result != nil {
		t.recordRunCounters(ctx, result)
	}

	if span == nil {
		return
	}
	if result != nil {
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"run.rows_in":        result.Summary.InitialRows,
			"run.rows_out":       result.Summary.FinalRows,
			"run.retention_rate": result.Summary.RetentionRate,
		})
	}
	span.SetAttributes(attribute.Float64("run.duration_seconds", duration.Seconds()))

	status := "success"
	if err != nil {
		status = "failure"
	}
	infrastructure.AddSpanEvent(ctx, "run.completed", map[string]interface{}{
		"run_id":   runID,
		"status":   status,
		"duration": duration.Seconds(),
	})

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("error.type", "run_execution_error"),
		))
		span.SetStatus(codes.Error, "run failed")
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()
}

// recordRunCounters records the domain counters that only exist once the
// run has a result: imputed cells, conversion failures and quality findings.
func (t *RunTracer) recordRunCounters(ctx context.Context, result *RunResult) {
	if t.metrics == nil {
		return
	}

	if result.Outcome != nil {
		var imputed, failures int64
		for _, stage := range result.Outcome.Stages {
			imputed += int64(stage.CellsImputed)
			failures += int64(stage.Details["conversion_failures"])
		}
		if imputed > 0 {
			t.metrics.CellsImputed.Add(ctx, imputed)
		}
		if failures > 0 {
			t.metrics.ConversionFailures.Add(ctx, failures)
		}
	}

	if result.Validation != nil {
		if findings := result.Validation.IssueCount(); findings > 0 {
			t.metrics.QualityFindings.Add(ctx, int64(findings),
				metric.WithAttributes(attribute.String("source", "quality")))
		}
	}
}
