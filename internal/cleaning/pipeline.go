package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fraudcli/internal/dataset"
)

// Outcome summarizes a full pipeline run. Initial and final counts come
// from the table sizes immediately before the first stage and immediately
// after the last one.
type Outcome struct {
	InitialRows int
	FinalRows   int
	RowsRemoved int

	// RetentionRate is the percentage of input rows that survived
	// cleaning. An empty input retains 100 percent.
	RetentionRate float64

	Stages []StageOutcome
}

// StageOutcome records what one stage did during a run.
type StageOutcome struct {
	ID          string
	Name        string
	RowsIn      int
	RowsOut     int
	RowsRemoved int

	CellsImputed   int
	CellsRewritten int

	Skipped    bool
	SkipReason string

	Details  map[string]int
	Duration time.Duration
}

// Stage returns the outcome of the stage with the given ID, or nil when the
// stage did not run.
func (o *Outcome) Stage(id string) *StageOutcome {
	for i := range o.Stages {
		if o.Stages[i].ID == id {
			return &o.Stages[i]
		}
	}
	return nil
}

// Pipeline executes the cleaning stages strictly in order.
type Pipeline struct {
	logger *slog.Logger
	tracer *StageTracer
	stages []Stage
}

// NewPipeline creates a pipeline with the standard stage order.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger.With(slog.String("component", "cleaning")),
		stages: []Stage{
			NewAddressStage(),
			NewIPPrefixStage(),
			NewRiskScoreStage(),
			NewAmountStage(),
			NewTimestampStage(nil),
			NewRegionStage(),
			NewDuplicateStage(),
		},
	}
}

// WithTracer attaches OpenTelemetry instrumentation to stage execution.
func (p *Pipeline) WithTracer(tracer *StageTracer) *Pipeline {
	p.tracer = tracer
	return p
}

// Run executes every stage against a private clone of table and returns the
// cleaned result with its outcome. The input table is never modified.
func (p *Pipeline) Run(ctx context.Context, table *dataset.Table) (*dataset.Table, *Outcome, error) {
	working := table.Clone()
	outcome := &Outcome{InitialRows: working.NumRows()}

	p.logger.InfoContext(ctx, "Starting cleaning pipeline",
		slog.Int("rows", outcome.InitialRows),
		slog.Int("stages", len(p.stages)))

	for _, stage := range p.stages {
		rowsIn := working.NumRows()
		started := time.Now()

		stageCtx, span := p.tracer.StartStage(ctx, stage)
		next, result, err := stage.Apply(stageCtx, working)
		duration := time.Since(started)

		rowsOut := rowsIn
		if err == nil {
			rowsOut = next.NumRows()
		}
		p.tracer.EndStage(stageCtx, span, stage, duration, rowsIn, rowsOut, err)

		if err != nil {
			p.logger.ErrorContext(ctx, "Cleaning stage failed",
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			return nil, nil, fmt.Errorf("stage %s: %w", stage.ID(), err)
		}
		working = next

		stageOutcome := StageOutcome{
			ID:             stage.ID(),
			Name:           stage.Name(),
			RowsIn:         rowsIn,
			RowsOut:        rowsOut,
			RowsRemoved:    rowsIn - rowsOut,
			CellsImputed:   result.CellsImputed,
			CellsRewritten: result.CellsRewritten,
			Skipped:        result.Skipped,
			SkipReason:     result.SkipReason,
			Details:        result.Details,
			Duration:       duration,
		}
		outcome.Stages = append(outcome.Stages, stageOutcome)

		if result.Skipped {
			p.logger.WarnContext(ctx, "Cleaning stage skipped",
				slog.String("stage", stage.ID()),
				slog.String("reason", result.SkipReason))
			continue
		}
		p.logger.InfoContext(ctx, "Cleaning stage completed",
			slog.String("stage", stage.ID()),
			slog.Int("rows_in", rowsIn),
			slog.Int("rows_out", rowsOut),
			slog.Int("cells_imputed", result.CellsImputed),
			slog.Int("cells_rewritten", result.CellsRewritten),
			slog.Duration("duration", duration))
	}

	outcome.FinalRows = working.NumRows()
	outcome.RowsRemoved = outcome.InitialRows - outcome.FinalRows
	outcome.RetentionRate = retentionRate(outcome.InitialRows, outcome.FinalRows)

	p.logger.InfoContext(ctx, "Cleaning pipeline completed",
		slog.Int("initial_rows", outcome.InitialRows),
		slog.Int("final_rows", outcome.FinalRows),
		slog.Int("rows_removed", outcome.RowsRemoved),
		slog.Float64("retention_rate", outcome.RetentionRate))

	return working, outcome, nil
}

// retentionRate returns the surviving percentage of rows. An empty input
// counts as full retention: nothing was there to lose.
func retentionRate(initial, final int) float64 {
	if initial == 0 {
		return 100
	}
	return float64(final) / float64(initial) * 100
}
