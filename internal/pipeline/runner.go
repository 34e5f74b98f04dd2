// Package pipeline orchestrates a full run: load the raw table, profile it,
// validate quality, clean it, verify consistency and build the analysis
// reports. The runner owns phase ordering and instrumentation; the work
// itself lives in the phase packages.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fraudcli/internal/cleaning"
	"fraudcli/internal/consistency"
	"fraudcli/internal/dataset"
	"fraudcli/internal/infrastructure"
	"fraudcli/internal/profile"
	"fraudcli/internal/quality"
	"fraudcli/internal/reports"
)

// RunResult holds everything a completed run produced. The cleaned table
// and the reports are in-memory only; persisting them is the caller's job.
type RunResult struct {
	RunID string

	// Cleaned is the table after all cleaning stages.
	Cleaned *dataset.Table

	// Profile describes the raw table before any cleaning.
	Profile *profile.TableProfile

	// Validation reports the raw table's quality findings.
	Validation *quality.ValidationReport

	// Outcome accounts for every cleaning stage.
	Outcome *cleaning.Outcome

	// Consistency reports the post-cleaning logic checks.
	Consistency *consistency.Report

	// RegionRisk and TopSales are nil when the cleaned table lacks the
	// columns they need.
	RegionRisk *reports.RegionRiskReport
	TopSales   *reports.TopSalesReport

	// Distributions holds the cleaned-table value counts for the
	// categorical columns the run summary displays.
	Distributions []profile.ColumnDistribution

	Summary RunSummary
}

// RunSummary condenses a run into the numbers worth printing.
type RunSummary struct {
	RunID     string
	InputPath string
	StartedAt time.Time
	Duration  time.Duration

	InitialRows   int
	FinalRows     int
	RowsRemoved   int
	RetentionRate float64

	CellsImputed int

	// MostRecentTransaction is the latest timestamp in the cleaned table,
	// zero when no row carries a valid instant.
	MostRecentTransaction time.Time

	QualityIssues int
	ChecksPassed  int
	ChecksTotal   int

	// RegionsAnalyzed counts the regions in the risk report;
	// TopSaleAddresses counts the rows in the top-sales report.
	RegionsAnalyzed  int
	TopSaleAddresses int
}

// Runner executes pipeline runs.
type Runner struct {
	logger    *slog.Logger
	tracer    *RunTracer
	profiler  *profile.Profiler
	validator *quality.Validator
	cleaner   *cleaning.Pipeline
	checker   *consistency.Checker
	builder   *reports.Builder
}

// NewRunner creates a runner with all phases wired. A nil logger falls back
// to the default.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:    logger.With(slog.String("component", "pipeline")),
		profiler:  profile.NewProfiler(logger),
		validator: quality.NewValidator(logger),
		cleaner:   cleaning.NewPipeline(logger),
		checker:   consistency.NewChecker(logger),
		builder:   reports.NewBuilder(logger),
	}
}

// WithTelemetry attaches run-level and stage-level tracers. Without it the
// runner executes exactly the same work uninstrumented.
func (r *Runner) WithTelemetry(runTracer *RunTracer, stageTracer *cleaning.StageTracer) *Runner {
	r.tracer = runTracer
	r.cleaner = r.cleaner.WithTracer(stageTracer)
	return r
}

// Run executes the full pipeline against the file at inputPath. It fails
// only when the input cannot be loaded or a cleaning stage errors; quality
// and consistency findings never abort a run.
func (r *Runner) Run(ctx context.Context, inputPath string) (*RunResult, error) {
	runID := uuid.New().String()
	ctx = infrastructure.WithTraceID(ctx, runID)
	started := time.Now()

	ctx, runSpan := r.tracer.StartRun(ctx, runID, inputPath)

	r.logger.InfoContext(ctx, "Pipeline run started",
		slog.String("run_id", runID),
		slog.String("input_path", inputPath))

	result, err := r.execute(ctx, runID, inputPath, started)
	duration := time.Since(started)
	r.tracer.EndRun(ctx, runSpan, runID, duration, result, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("run_id", runID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, err
	}

	r.logger.InfoContext(ctx, "Pipeline run completed",
		slog.String("run_id", runID),
		slog.Duration("duration", duration),
		slog.Int("initial_rows", result.Summary.InitialRows),
		slog.Int("final_rows", result.Summary.FinalRows),
		slog.Float64("retention_rate", result.Summary.RetentionRate))
	return result, nil
}

func (r *Runner) execute(ctx context.Context, runID, inputPath string, started time.Time) (*RunResult, error) {
	phaseCtx, span := r.tracer.StartPhase(ctx, "load")
	table, err := dataset.Load(phaseCtx, inputPath)
	r.tracer.EndPhase(phaseCtx, span, err)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	result := &RunResult{RunID: runID}

	phaseCtx, span = r.tracer.StartPhase(ctx, "profile")
	result.Profile = r.profiler.Profile(phaseCtx, table)
	r.tracer.EndPhase(phaseCtx, span, nil)

	phaseCtx, span = r.tracer.StartPhase(ctx, "validate")
	result.Validation = r.validator.Validate(phaseCtx, table)
	r.tracer.EndPhase(phaseCtx, span, nil)

	phaseCtx, span = r.tracer.StartPhase(ctx, "clean")
	cleaned, outcome, err := r.cleaner.Run(phaseCtx, table)
	r.tracer.EndPhase(phaseCtx, span, err)
	if err != nil {
		return nil, fmt.Errorf("clean table: %w", err)
	}
	result.Cleaned = cleaned
	result.Outcome = outcome

	phaseCtx, span = r.tracer.StartPhase(ctx, "verify")
	result.Consistency = r.checker.Check(phaseCtx, cleaned)
	r.tracer.EndPhase(phaseCtx, span, nil)

	phaseCtx, span = r.tracer.StartPhase(ctx, "report")
	result.RegionRisk, result.TopSales = r.builder.Build(phaseCtx, cleaned)
	result.Distributions = r.profiler.Distributions(phaseCtx, cleaned, []string{
		dataset.ColLocationRegion,
		dataset.ColTransactionType,
		dataset.ColAnomaly,
	})
	r.tracer.EndPhase(phaseCtx, span, nil)

	result.Summary = summarize(result, inputPath, started)
	return result, nil
}

// summarize condenses a finished result. Duration is measured here so the
// summary covers every phase including report building.
func summarize(result *RunResult, inputPath string, started time.Time) RunSummary {
	summary := RunSummary{
		RunID:     result.RunID,
		InputPath: inputPath,
		StartedAt: started,
		Duration:  time.Since(started),
	}

	if result.Outcome != nil {
		summary.InitialRows = result.Outcome.InitialRows
		summary.FinalRows = result.Outcome.FinalRows
		summary.RowsRemoved = result.Outcome.RowsRemoved
		summary.RetentionRate = result.Outcome.RetentionRate
		for _, stage := range result.Outcome.Stages {
			summary.CellsImputed += stage.CellsImputed
		}
	}
	if result.Cleaned != nil {
		summary.MostRecentTransaction = latestInstant(result.Cleaned)
	}
	if result.Validation != nil {
		summary.QualityIssues = result.Validation.IssueCount()
	}
	if result.Consistency != nil {
		summary.ChecksPassed = result.Consistency.Passed
		summary.ChecksTotal = result.Consistency.Total
	}
	if result.RegionRisk != nil {
		summary.RegionsAnalyzed = len(result.RegionRisk.Rows)
	}
	if result.TopSales != nil {
		summary.TopSaleAddresses = len(result.TopSales.Rows)
	}
	return summary
}

// latestInstant scans the timestamp column for the most recent instant.
func latestInstant(table *dataset.Table) time.Time {
	col, ok := table.ColumnIndex(dataset.ColTimestamp)
	if !ok {
		return time.Time{}
	}
	var latest time.Time
	for row := 0; row < table.NumRows(); row++ {
		if instant, ok := table.ValueAt(row, col).Instant(); ok && instant.After(latest) {
			latest = instant
		}
	}
	return latest
}
