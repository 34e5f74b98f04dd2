package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"fraudcli/internal/config"
)

const (
	ServiceName    = "fraud-transaction-pipeline"
	ServiceVersion = config.AppVersion
	MeterName      = "fraudcli"
)

// OTelProviders holds the OpenTelemetry providers for one process. A batch
// run has no scrape endpoint, so metrics are gathered with a manual reader
// and logged once at the end of the run.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Logger         *slog.Logger

	reader *sdkmetric.ManualReader
}

// InitializeOTel initializes OpenTelemetry for the pipeline process. With
// telemetry disabled it still returns usable no-op tracer and meter handles
// so callers never branch.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.Tracer(MeterName),
		Meter:  otel.Meter(MeterName),
	}

	if !cfg.Enabled {
		return providers, nil
	}

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("version", ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	initializeMetrics(cfg, res, providers)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(os.Stderr),
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up a manual-reader meter provider
func initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) {
	reader := sdkmetric.NewManualReader()

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	providers.reader = reader
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	otel.SetMeterProvider(mp)
}

// PipelineMetrics holds the pipeline-specific instruments
type PipelineMetrics struct {
	RunsTotal          metric.Int64Counter
	RunDuration        metric.Float64Histogram
	StageExecutions    metric.Int64Counter
	StageDuration      metric.Float64Histogram
	RowsRemoved        metric.Int64Counter
	CellsImputed       metric.Int64Counter
	ConversionFailures metric.Int64Counter
	QualityFindings    metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on the given meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageExecutions, err := meter.Int64Counter(
		"pipeline_stage_executions_total",
		metric.WithDescription("Total number of cleaning stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Cleaning stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsRemoved, err := meter.Int64Counter(
		"pipeline_rows_removed_total",
		metric.WithDescription("Total number of rows removed by cleaning stages"),
	)
	if err != nil {
		return nil, err
	}

	cellsImputed, err := meter.Int64Counter(
		"pipeline_cells_imputed_total",
		metric.WithDescription("Total number of cells repaired by imputation"),
	)
	if err != nil {
		return nil, err
	}

	conversionFailures, err := meter.Int64Counter(
		"pipeline_conversion_failures_total",
		metric.WithDescription("Total number of cell conversion failures degraded to missing"),
	)
	if err != nil {
		return nil, err
	}

	qualityFindings, err := meter.Int64Counter(
		"pipeline_quality_findings_total",
		metric.WithDescription("Total number of advisory quality findings"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:          runsTotal,
		RunDuration:        runDuration,
		StageExecutions:    stageExecutions,
		StageDuration:      stageDuration,
		RowsRemoved:        rowsRemoved,
		CellsImputed:       cellsImputed,
		ConversionFailures: conversionFailures,
		QualityFindings:    qualityFindings,
	}, nil
}

// RecordStageMetrics records the outcome of a single cleaning stage
func RecordStageMetrics(ctx context.Context, metrics *PipelineMetrics, stageID string, duration time.Duration, rowsIn, rowsOut int) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("stage.id", stageID),
	}

	metrics.StageExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if removed := rowsIn - rowsOut; removed > 0 {
		metrics.RowsRemoved.Add(ctx, int64(removed), metric.WithAttributes(attrs...))
	}
}

// RecordRunMetrics records the outcome of a full pipeline run
func RecordRunMetrics(ctx context.Context, metrics *PipelineMetrics, runID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
		attribute.String("status", status),
	}

	metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// LogCollectedMetrics drains the manual reader and logs every recorded sum
// and histogram. Called once at the end of a run in place of a scrape.
func (p *OTelProviders) LogCollectedMetrics(ctx context.Context) {
	if p.reader == nil {
		return
	}

	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		p.Logger.WarnContext(ctx, "Failed to collect metrics", slog.String("error", err.Error()))
		return
	}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				p.Logger.InfoContext(ctx, "Metric collected",
					slog.String("name", m.Name),
					slog.Int64("total", total))
			case metricdata.Histogram[float64]:
				var count uint64
				var sum float64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				p.Logger.InfoContext(ctx, "Metric collected",
					slog.String("name", m.Name),
					slog.Uint64("count", count),
					slog.Float64("sum", sum))
			}
		}
	}
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the otel trace ID from context for logging
// correlation, falling back to the app-level trace ID.
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return GetTraceID(ctx)
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, anyAttribute(k, v))
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		span.SetAttributes(anyAttribute(k, v))
	}
}

// anyAttribute converts a loosely typed value to an otel attribute
func anyAttribute(k string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(k, val)
	case int:
		return attribute.Int(k, val)
	case int64:
		return attribute.Int64(k, val)
	case float64:
		return attribute.Float64(k, val)
	case bool:
		return attribute.Bool(k, val)
	default:
		return attribute.String(k, fmt.Sprintf("%v", val))
	}
}
