package cleaning

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"fraudcli/internal/config"
	"fraudcli/internal/infrastructure"
)

func TestPipeline_RunEmitsStageSpans(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		Enabled:       true,
		TraceExporter: "none",
		SampleRatio:   1.0,
		Environment:   "test",
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tracer, err := NewStageTracer(providers)
	require.NoError(t, err)

	table := buildTable(t, fullColumns(), [][]string{
		fullRow(nil),
		fullRow(nil), // duplicate, dropped by the last stage
	})

	_, outcome, err := NewPipeline(nil).WithTracer(tracer).Run(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, 1, outcome.FinalRows)

	spans := exporter.GetSpans()
	require.Len(t, spans, len(outcome.Stages))

	var dedup *tracetest.SpanStub
	for i := range spans {
		if spans[i].Name == "cleaning.stage."+StageIDDuplicates {
			dedup = &spans[i]
		}
	}
	require.NotNil(t, dedup, "duplicate removal span missing")

	attrs := map[string]attribute.Value{}
	for _, kv := range dedup.Attributes {
		attrs[string(kv.Key)] = kv.Value
	}
	assert.Equal(t, int64(2), attrs["stage.rows_in"].AsInt64())
	assert.Equal(t, int64(1), attrs["stage.rows_out"].AsInt64())

	var completed bool
	for _, ev := range dedup.Events {
		if ev.Name == "stage.completed" {
			completed = true
			break
		}
	}
	assert.True(t, completed, "stage span should carry a completion event")
}
